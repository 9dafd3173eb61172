// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"github.com/gammazero/deque"
	"github.com/segmentio/ksuid"
	"github.com/xmidt-org/procsema/proc"
)

// waiter is the record of one process blocked in Down.  done and err are guarded by
// the process's sleep lock, never by the semaphore's lock.
type waiter struct {
	id      ksuid.KSUID
	process *proc.Process

	done bool
	err  error
}

func newWaiter(p *proc.Process) *waiter {
	return &waiter{
		id:      ksuid.New(),
		process: p,
	}
}

// wake resumes the waiting process with the given outcome.  Only the first wake counts.
func (w *waiter) wake(err error) {
	w.process.Wakeup(func() {
		if !w.done {
			w.done = true
			w.err = err
		}
	})
}

// wait parks the process until wake has been called for this record.  It returns
// proc.ErrKilled if the process was killed first.
func (w *waiter) wait() error {
	var outcome error
	err := w.process.Sleep(func() bool {
		outcome = w.err
		return w.done
	})

	if err != nil {
		return err
	}

	return outcome
}

// outcome reports whether this record has been woken, and with what result.
func (w *waiter) outcome() (done bool, err error) {
	w.process.Inspect(func() {
		done, err = w.done, w.err
	})

	return
}

// waitQueue is a FIFO of waiters.  It is guarded by the owning semaphore's lock.
type waitQueue struct {
	q deque.Deque[*waiter]
}

func (wq *waitQueue) len() int {
	return wq.q.Len()
}

func (wq *waitQueue) push(w *waiter) {
	wq.q.PushBack(w)
}

// pop removes the oldest waiter.
func (wq *waitQueue) pop() (*waiter, bool) {
	if wq.q.Len() == 0 {
		return nil, false
	}

	return wq.q.PopFront(), true
}

// remove takes w out of the queue wherever it is, preserving the order of the rest.
func (wq *waitQueue) remove(w *waiter) bool {
	for i := 0; i < wq.q.Len(); i++ {
		if wq.q.At(i) == w {
			wq.q.Remove(i)
			return true
		}
	}

	return false
}

// takeAll empties the queue, returning its waiters oldest first.
func (wq *waitQueue) takeAll() []*waiter {
	all := make([]*waiter, 0, wq.q.Len())
	for wq.q.Len() > 0 {
		all = append(all, wq.q.PopFront())
	}

	return all
}
