// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package usermem

import (
	"bytes"
	"errors"
)

var (
	// ErrNameTooLong is returned when a copied string fills the destination without a terminator.
	ErrNameTooLong = errors.New("string does not fit in the destination buffer")
)

// CopyInString copies a NUL-terminated string from user memory into a kernel buffer of
// max bytes.  The returned length counts the terminator.
//
// ErrFault takes precedence only when the fault happens before a terminator has been seen.
// When max bytes are copied and none of them is a terminator, the partial copy is returned
// along with ErrNameTooLong.
func CopyInString(s Space, addr Addr, max int) (string, int, error) {
	if max <= 0 {
		return "", 0, ErrNameTooLong
	}

	if addr == 0 {
		return "", 0, ErrFault
	}

	buf := make([]byte, max)
	n, err := s.ReadAt(buf, addr)
	if i := bytes.IndexByte(buf[:n], 0); i >= 0 {
		return string(buf[:i]), i + 1, nil
	}

	if err != nil {
		return "", n, ErrFault
	}

	return string(buf), n, ErrNameTooLong
}
