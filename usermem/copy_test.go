// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package usermem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSpace struct {
	mock.Mock
}

func (m *mockSpace) ReadAt(b []byte, addr Addr) (int, error) {
	arguments := m.Called(b, addr)
	return arguments.Int(0), arguments.Error(1)
}

func TestCopyInString(t *testing.T) {
	const max = 8

	m := NewMemory()

	testData := []struct {
		name           string
		addr           Addr
		expectedString string
		expectedLength int
		expectedErr    error
	}{
		{"Empty", m.MapString(""), "", 1, nil},
		{"Short", m.MapString("Sem1"), "Sem1", 5, nil},
		{"ExactFit", m.MapString("1234567"), "1234567", 8, nil},
		{"NoRoomForTerminator", m.MapString("12345678"), "12345678", 8, ErrNameTooLong},
		{"MuchTooLong", m.MapString(strings.Repeat("x", 40)), "xxxxxxxx", 8, ErrNameTooLong},
		{"Unterminated", m.Map([]byte("abc")), "", 3, ErrFault},
		{"Null", 0, "", 0, ErrFault},
		{"Unmapped", 0xdead0000, "", 0, ErrFault},
	}

	for _, record := range testData {
		t.Run(record.name, func(t *testing.T) {
			assert := assert.New(t)
			actual, length, err := CopyInString(m, record.addr, max)
			assert.Equal(record.expectedErr, err)
			assert.Equal(record.expectedLength, length)
			if err != ErrFault {
				assert.Equal(record.expectedString, actual)
			}
		})
	}
}

func TestCopyInStringFaultAfterTerminator(t *testing.T) {
	var (
		assert = assert.New(t)
		space  = new(mockSpace)
	)

	space.On("ReadAt", mock.AnythingOfType("[]uint8"), Addr(0x2000)).
		Run(func(arguments mock.Arguments) {
			copy(arguments.Get(0).([]byte), "ok\x00")
		}).
		Return(3, ErrFault).
		Once()

	actual, length, err := CopyInString(space, 0x2000, 16)
	assert.NoError(err)
	assert.Equal("ok", actual)
	assert.Equal(3, length)
	space.AssertExpectations(t)
}
