// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/procsema/proc"
)

func TestWaitQueue(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		table = proc.NewTable()
		wq    waitQueue
	)

	_, ok := wq.pop()
	assert.False(ok)

	waiters := make([]*waiter, 4)
	for i := range waiters {
		p, err := table.Fork(table.Init())
		require.NoError(err)
		waiters[i] = newWaiter(p)
		wq.push(waiters[i])
	}

	assert.NotEqual(waiters[0].id, waiters[1].id)
	assert.Equal(4, wq.len())
	assert.True(wq.remove(waiters[2]))
	assert.False(wq.remove(waiters[2]))

	first, ok := wq.pop()
	assert.True(ok)
	assert.Equal(waiters[0], first)

	assert.Equal([]*waiter{waiters[1], waiters[3]}, wq.takeAll())
	assert.Zero(wq.len())
}

func TestWaiterWakeOnce(t *testing.T) {
	var (
		assert = assert.New(t)
		table  = proc.NewTable()
		w      = newWaiter(table.Init())
	)

	done, err := w.outcome()
	assert.False(done)
	assert.NoError(err)

	w.wake(ErrRemoved)
	w.wake(nil)

	done, err = w.outcome()
	assert.True(done)
	assert.Equal(ErrRemoved, err)
	assert.Equal(ErrRemoved, w.wait())
}
