// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package lockmgr provides a lock with shared, exclusive, and drain modes.

A drained lock is permanently invalid: the goroutine that drained it becomes the sole
owner of whatever the lock guarded, and every later acquisition fails with ErrDrained.
This is what allows an object to be torn down while other goroutines may still hold
a reference to it.
*/
package lockmgr

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDrained is returned by any operation on a lock that has been drained.
	ErrDrained = errors.New("the lock has been drained")

	// ErrNotHeld is returned by Release when the lock is not held.
	ErrNotHeld = errors.New("the lock is not held")
)

// Mode is the way in which a lock is acquired.
type Mode int

const (
	Exclusive Mode = iota
	Shared
)

func (m Mode) String() string {
	switch m {
	case Exclusive:
		return "exclusive"
	case Shared:
		return "shared"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Lock is a lock manager lock.  The zero value is an unlocked, valid lock.
type Lock struct {
	mu   sync.Mutex
	cond *sync.Cond

	exclusive bool
	shared    int
	waiting   int
	draining  bool
	drained   bool
}

// New returns an unlocked Lock.
func New() *Lock {
	return new(Lock)
}

func (l *Lock) init() {
	if l.cond == nil {
		l.cond = sync.NewCond(&l.mu)
	}
}

func (l *Lock) available(m Mode) bool {
	if m == Shared {
		return !l.exclusive
	}

	return !l.exclusive && l.shared == 0
}

// Acquire blocks until the lock can be held in the given mode.  Once a drain has started,
// new acquisitions fail immediately, but goroutines already waiting are still served.
func (l *Lock) Acquire(m Mode) error {
	defer l.mu.Unlock()
	l.mu.Lock()
	l.init()

	if l.drained || l.draining {
		return ErrDrained
	}

	l.waiting++
	for !l.available(m) {
		l.cond.Wait()
	}

	l.waiting--
	if m == Shared {
		l.shared++
	} else {
		l.exclusive = true
	}

	return nil
}

// Release relinquishes one hold on the lock, shared or exclusive.
func (l *Lock) Release() error {
	defer l.mu.Unlock()
	l.mu.Lock()
	l.init()

	switch {
	case l.exclusive:
		l.exclusive = false
	case l.shared > 0:
		l.shared--
	default:
		return ErrNotHeld
	}

	l.cond.Broadcast()
	return nil
}

// Drain waits until nobody holds or waits for the lock, then invalidates it.  Only the
// first caller drains; any concurrent or later call returns ErrDrained.
func (l *Lock) Drain() error {
	defer l.mu.Unlock()
	l.mu.Lock()
	l.init()

	if l.drained || l.draining {
		return ErrDrained
	}

	l.draining = true
	for l.exclusive || l.shared > 0 || l.waiting > 0 {
		l.cond.Wait()
	}

	l.draining = false
	l.drained = true
	l.cond.Broadcast()
	return nil
}

// Drained reports whether this lock has been drained.
func (l *Lock) Drained() bool {
	defer l.mu.Unlock()
	l.mu.Lock()
	return l.drained
}
