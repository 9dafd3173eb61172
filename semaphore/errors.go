// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import "errors"

var (
	// ErrNameTooLong is returned when a name leaves no room for a terminator in MaxNameLength bytes.
	ErrNameTooLong = errors.New("the semaphore name is too long")

	// ErrExists is returned by Allocate when the caller already owns a semaphore with the same name.
	ErrExists = errors.New("the process already owns a semaphore with that name")

	// ErrOutOfRange is returned by Allocate for a negative initial count.
	ErrOutOfRange = errors.New("the initial count must not be negative")

	// ErrNotFound is returned when no semaphore with the given name is visible to the caller.
	ErrNotFound = errors.New("no such semaphore")

	// ErrNoMemory is returned when a configured semaphore or waiter limit has been reached.
	ErrNoMemory = errors.New("semaphore resources exhausted")

	// ErrInterrupted is returned from Down when the waiting process was killed.
	ErrInterrupted = errors.New("the wait was interrupted")

	// ErrRemoved is returned from Down when the semaphore was freed while the caller waited.
	ErrRemoved = errors.New("the semaphore was removed")

	// ErrInconsistent is returned from Up when the count reports waiters but the queue is empty.
	ErrInconsistent = errors.New("semaphore count and wait queue disagree")
)
