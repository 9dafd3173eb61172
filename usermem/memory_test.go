// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package usermem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMemoryReadAt(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		m    = NewMemory()
		addr = m.Map([]byte("hello"))
		buf  = make([]byte, 3)
	)

	require.NotZero(addr)
	n, err := m.ReadAt(buf, addr+1)
	assert.NoError(err)
	assert.Equal(3, n)
	assert.Equal("ell", string(buf))

	n, err = m.ReadAt(buf, addr+3)
	assert.Equal(ErrFault, err)
	assert.Equal(2, n)
	assert.Equal("lo", string(buf[:n]))

	n, err = m.ReadAt(buf, addr+5)
	assert.Equal(ErrFault, err)
	assert.Zero(n)

	n, err = m.ReadAt(buf, 0)
	assert.Equal(ErrFault, err)
	assert.Zero(n)
}

func testMemoryRegionsDoNotTouch(t *testing.T) {
	var (
		assert = assert.New(t)

		m      = NewMemory()
		first  = m.Map([]byte("ab"))
		second = m.Map([]byte("cd"))
		buf    = make([]byte, 4)
	)

	assert.True(second > first+2)
	n, err := m.ReadAt(buf, first)
	assert.Equal(ErrFault, err)
	assert.Equal(2, n)
}

func testMemoryUnmap(t *testing.T) {
	var (
		assert = assert.New(t)

		m    = NewMemory()
		addr = m.MapString("gone")
		buf  = make([]byte, 1)
	)

	assert.True(m.Unmap(addr))
	assert.False(m.Unmap(addr))

	_, err := m.ReadAt(buf, addr)
	assert.Equal(ErrFault, err)
}

func testMemoryClone(t *testing.T) {
	var (
		assert = assert.New(t)

		m     = NewMemory()
		addr  = m.MapString("shared")
		clone = m.Clone()
		buf   = make([]byte, 6)
	)

	assert.True(m.Unmap(addr))

	n, err := clone.ReadAt(buf, addr)
	assert.NoError(err)
	assert.Equal("shared", string(buf[:n]))

	assert.NotEqual(addr, clone.MapString("next"))
}

func TestMemory(t *testing.T) {
	t.Run("ReadAt", testMemoryReadAt)
	t.Run("RegionsDoNotTouch", testMemoryRegionsDoNotTouch)
	t.Run("Unmap", testMemoryUnmap)
	t.Run("Clone", testMemoryClone)
}
