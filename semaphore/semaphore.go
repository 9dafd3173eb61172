// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"github.com/xmidt-org/procsema/lockmgr"
	"github.com/xmidt-org/procsema/proc"
)

// MaxNameLength is the size of the buffer a semaphore name is copied into, terminator included.
const MaxNameLength = 32

// Info is a snapshot of a semaphore's state.
type Info struct {
	Name    string
	Owner   proc.PID
	Count   int
	Waiting int
}

// Semaphore is a named counting semaphore.  count and waiters are guarded by lock.
// A negative count is the number of processes in waiters.
type Semaphore struct {
	name  string
	owner *proc.Process

	lock    *lockmgr.Lock
	count   int
	waiters waitQueue
}

func newSemaphore(name string, owner *proc.Process, count int) *Semaphore {
	return &Semaphore{
		name:  name,
		owner: owner,
		lock:  lockmgr.New(),
		count: count,
	}
}

// Name returns the name this semaphore was allocated with.
func (s *Semaphore) Name() string {
	return s.name
}

// Owner returns the process that allocated this semaphore.
func (s *Semaphore) Owner() *proc.Process {
	return s.owner
}

// Removed reports whether this semaphore has been freed, either explicitly or by its
// owner's exit.
func (s *Semaphore) Removed() bool {
	return s.lock.Drained()
}

// Info returns a snapshot of this semaphore.  ErrNotFound is returned once the semaphore
// has been freed.
func (s *Semaphore) Info() (Info, error) {
	if s.Removed() {
		return Info{}, ErrNotFound
	}

	if err := s.lock.Acquire(lockmgr.Shared); err != nil {
		return Info{}, ErrNotFound
	}

	defer s.lock.Release()
	return Info{
		Name:    s.name,
		Owner:   s.owner.PID(),
		Count:   s.count,
		Waiting: s.waiters.len(),
	}, nil
}

// ValidName checks that name fits in MaxNameLength bytes with its terminator.
func ValidName(name string) error {
	if len(name) >= MaxNameLength {
		return ErrNameTooLong
	}

	return nil
}
