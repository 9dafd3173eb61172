// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package sysent

import (
	"errors"
	"strconv"

	"github.com/xmidt-org/procsema/semaphore"
	"github.com/xmidt-org/procsema/usermem"
)

// Errno is the error code a syscall returns to its caller.  The values match OpenBSD.
type Errno uintptr

const (
	ENOENT       Errno = 2
	EINTR        Errno = 4
	ENOMEM       Errno = 12
	EFAULT       Errno = 14
	EEXIST       Errno = 17
	EINVAL       Errno = 22
	EDOM         Errno = 33
	ENAMETOOLONG Errno = 63
	ENOSYS       Errno = 78
	EIDRM        Errno = 89
)

var errnoNames = map[Errno]string{
	ENOENT:       "ENOENT",
	EINTR:        "EINTR",
	ENOMEM:       "ENOMEM",
	EFAULT:       "EFAULT",
	EEXIST:       "EEXIST",
	EINVAL:       "EINVAL",
	EDOM:         "EDOM",
	ENAMETOOLONG: "ENAMETOOLONG",
	ENOSYS:       "ENOSYS",
	EIDRM:        "EIDRM",
}

var errnoMessages = map[Errno]string{
	ENOENT:       "no such file or directory",
	EINTR:        "interrupted system call",
	ENOMEM:       "cannot allocate memory",
	EFAULT:       "bad address",
	EEXIST:       "file exists",
	EINVAL:       "invalid argument",
	EDOM:         "numerical argument out of domain",
	ENAMETOOLONG: "file name too long",
	ENOSYS:       "function not implemented",
	EIDRM:        "identifier removed",
}

func (e Errno) Error() string {
	if m, ok := errnoMessages[e]; ok {
		return m
	}

	return "errno " + strconv.Itoa(int(e))
}

// Name returns the symbolic name of this errno, e.g. "ENOENT".
func (e Errno) Name() string {
	if n, ok := errnoNames[e]; ok {
		return n
	}

	return "E" + strconv.Itoa(int(e))
}

// errnoMap translates package errors into errnos.  Order matters only in that the
// first match wins.
var errnoMap = []struct {
	err   error
	errno Errno
}{
	{usermem.ErrFault, EFAULT},
	{usermem.ErrNameTooLong, ENAMETOOLONG},
	{semaphore.ErrNameTooLong, ENAMETOOLONG},
	{semaphore.ErrExists, EEXIST},
	{semaphore.ErrOutOfRange, EDOM},
	{semaphore.ErrNotFound, ENOENT},
	{semaphore.ErrNoMemory, ENOMEM},
	{semaphore.ErrInterrupted, EINTR},
	{semaphore.ErrRemoved, EIDRM},
	{semaphore.ErrInconsistent, EINVAL},
}

// ToErrno converts an error into the Errno reported to a caller.  A nil error yields 0,
// and an unrecognized error yields EINVAL.
func ToErrno(err error) Errno {
	if err == nil {
		return 0
	}

	var errno Errno
	if errors.As(err, &errno) {
		return errno
	}

	for _, m := range errnoMap {
		if errors.Is(err, m.err) {
			return m.errno
		}
	}

	return EINVAL
}
