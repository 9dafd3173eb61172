// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"errors"
	"sync"

	"github.com/xmidt-org/procsema/lockmgr"
	"github.com/xmidt-org/procsema/proc"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Subsystem owns every process's semaphore registry.  Its lock guards registry membership
// only: lookups share it, while allocation, freeing, fork, and exit take it exclusively.
// Counts and wait queues are guarded by each semaphore's own lock, so operations on
// different semaphores never serialize.
type Subsystem struct {
	logger   *zap.Logger
	measures *Measures
	options  Options

	lock       sync.RWMutex
	registries map[*proc.Process]*registry
	total      int
}

// New creates a Subsystem and hooks it into the fork and exit paths of t.
func New(t *proc.Table, o ...Option) *Subsystem {
	s := &Subsystem{
		logger:     sallust.Default(),
		measures:   discardMeasures(),
		options:    DefaultOptions(),
		registries: make(map[*proc.Process]*registry),
	}

	for _, f := range o {
		f(s)
	}

	t.OnFork(s.fork)
	t.OnExit(s.exit)
	return s
}

// fork marks the child inherited when the parent has semaphores of its own or can see
// an ancestor's.
func (s *Subsystem) fork(parent, child *proc.Process) {
	defer s.lock.Unlock()
	s.lock.Lock()

	if s.registries[parent].visible() {
		s.registries[child] = &registry{inherited: true}
	}
}

// exit frees everything the exiting process owns.
func (s *Subsystem) exit(p *proc.Process) {
	s.lock.Lock()
	r := s.registries[p]
	delete(s.registries, p)

	var owned []*Semaphore
	if r != nil {
		owned = r.owned
		s.total -= len(owned)
		s.measures.Semaphores.Add(-float64(len(owned)))
	}

	s.lock.Unlock()

	for _, sem := range owned {
		s.destroy(sem)
	}

	if len(owned) > 0 {
		s.logger.Info("freed semaphores on exit", zap.Stringer("pid", p.PID()), zap.Int("count", len(owned)))
	}
}

// SetInherited sets or clears the inherited flag of p.
func (s *Subsystem) SetInherited(p *proc.Process, inherited bool) {
	defer s.lock.Unlock()
	s.lock.Lock()

	r := s.registries[p]
	if r == nil {
		r = new(registry)
		s.registries[p] = r
	}

	r.inherited = inherited
}

// Inherited reports whether p is marked inherited.
func (s *Subsystem) Inherited(p *proc.Process) bool {
	defer s.lock.RUnlock()
	s.lock.RLock()

	r := s.registries[p]
	return r != nil && r.inherited
}

// Len returns the number of allocated semaphores across all processes.
func (s *Subsystem) Len() int {
	defer s.lock.RUnlock()
	s.lock.RLock()
	return s.total
}

// Lookup returns the semaphore named name that p sees: its own if it has one, otherwise
// the nearest one owned by an ancestor reachable through inherited processes.
func (s *Subsystem) Lookup(p *proc.Process, name string) (*Semaphore, bool) {
	defer s.lock.RUnlock()
	s.lock.RLock()

	found := s.resolve(p, name)
	return found, found != nil
}

// Stat returns a snapshot of the semaphore named name that p sees.
func (s *Subsystem) Stat(p *proc.Process, name string) (Info, error) {
	if err := ValidName(name); err != nil {
		return Info{}, err
	}

	sem, ok := s.Lookup(p, name)
	if !ok {
		return Info{}, ErrNotFound
	}

	return sem.Info()
}

// Allocate creates a semaphore owned by p with the given initial count.  Ancestors are
// not consulted, so the new semaphore shadows any ancestor semaphore of the same name.
func (s *Subsystem) Allocate(p *proc.Process, name string, count int) error {
	if err := ValidName(name); err != nil {
		return err
	}

	defer s.lock.Unlock()
	s.lock.Lock()

	r := s.registries[p]
	if r != nil && r.find(name, p) != nil {
		return ErrExists
	}

	if count < 0 {
		return ErrOutOfRange
	}

	if s.options.MaxSemaphores > 0 && s.total >= s.options.MaxSemaphores {
		return ErrNoMemory
	}

	if r == nil {
		r = new(registry)
		s.registries[p] = r
	}

	r.insert(newSemaphore(name, p, count))
	s.total++
	s.measures.Semaphores.Add(1.0)
	s.logger.Debug("allocated semaphore", zap.String("name", name), zap.Stringer("pid", p.PID()), zap.Int("count", count))
	return nil
}

// Down decrements the count of the semaphore named name.  If the count goes negative,
// p sleeps until an Up resumes it.
func (s *Subsystem) Down(p *proc.Process, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}

	sem, ok := s.Lookup(p, name)
	if !ok {
		return ErrNotFound
	}

	if err := sem.lock.Acquire(lockmgr.Exclusive); err != nil {
		// freed between the lookup and here
		return ErrNotFound
	}

	if sem.count > 0 {
		sem.count--
		s.release(sem)
		return nil
	}

	// the waiter limit is checked before the count changes, so a refusal leaves no trace
	if s.options.MaxWaiters > 0 && sem.waiters.len() >= s.options.MaxWaiters {
		s.release(sem)
		return ErrNoMemory
	}

	w := newWaiter(p)
	sem.count--
	sem.waiters.push(w)
	s.release(sem)

	s.measures.Waiters.Add(1.0)
	defer s.measures.Waiters.Add(-1.0)

	logger := s.logger.With(zap.String("name", name), zap.Stringer("pid", p.PID()), zap.Stringer("waiter", w.id))
	logger.Debug("blocking on semaphore")

	err := w.wait()
	switch {
	case errors.Is(err, proc.ErrKilled):
		err = s.interrupted(sem, w)
		logger.Debug("wait interrupted", zap.Error(err))
		return err

	case err != nil:
		logger.Debug("semaphore removed while waiting")
		return err
	}

	// the Up that woke us holds the lock until it is done with the queue
	if sem.lock.Acquire(lockmgr.Exclusive) == nil {
		s.release(sem)
	}

	logger.Debug("resumed from semaphore")
	return nil
}

// interrupted cleans up after a waiter whose process was killed.  A waiter that an Up or
// Free already resumed keeps that outcome.  Otherwise it is removed from the queue and the
// count restored.
func (s *Subsystem) interrupted(sem *Semaphore, w *waiter) error {
	if done, err := w.outcome(); done {
		return err
	}

	if err := sem.lock.Acquire(lockmgr.Exclusive); err != nil {
		return ErrRemoved
	}

	defer s.release(sem)
	if sem.waiters.remove(w) {
		sem.count++
		return ErrInterrupted
	}

	// resumed between the check above and taking the lock
	_, err := w.outcome()
	return err
}

// release drops sem's lock.  An error here means the lock is held by nobody, which is
// a bookkeeping bug.
func (s *Subsystem) release(sem *Semaphore) {
	if err := sem.lock.Release(); err != nil {
		s.logger.DPanic("semaphore lock release failed", zap.String("name", sem.name), zap.Error(err))
	}
}

// Up increments the count of the semaphore named name, resuming the oldest waiter if any.
func (s *Subsystem) Up(p *proc.Process, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}

	sem, ok := s.Lookup(p, name)
	if !ok {
		return ErrNotFound
	}

	if err := sem.lock.Acquire(lockmgr.Exclusive); err != nil {
		return ErrNotFound
	}

	defer s.release(sem)
	sem.count++
	if sem.count > 0 {
		return nil
	}

	w, ok := sem.waiters.pop()
	if !ok {
		sem.count--
		s.logger.DPanic("semaphore has a deficit but no waiters", zap.String("name", name), zap.Int("count", sem.count))
		return ErrInconsistent
	}

	w.wake(nil)
	s.logger.Debug("woke waiter", zap.String("name", name), zap.Stringer("pid", w.process.PID()), zap.Stringer("waiter", w.id))
	return nil
}

// Free removes the semaphore named name that p sees and destroys it.  Processes still
// waiting on it return ErrRemoved from Down.
func (s *Subsystem) Free(p *proc.Process, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}

	s.lock.Lock()
	sem := s.resolve(p, name)
	if sem == nil || (s.options.OwnerOnlyFree && sem.owner != p) {
		s.lock.Unlock()
		return ErrNotFound
	}

	if s.registries[sem.owner].remove(sem) {
		s.total--
		s.measures.Semaphores.Add(-1.0)
	}

	s.lock.Unlock()

	s.destroy(sem)
	s.logger.Info("freed semaphore", zap.String("name", name), zap.Stringer("pid", p.PID()), zap.Stringer("owner", sem.owner.PID()))
	return nil
}

// destroy waits for in-flight Down and Up calls to leave the semaphore, invalidates it,
// and resumes every remaining waiter with ErrRemoved.  The semaphore must already be
// unreachable through any registry.
func (s *Subsystem) destroy(sem *Semaphore) {
	if err := sem.lock.Drain(); err != nil {
		return
	}

	for _, w := range sem.waiters.takeAll() {
		w.wake(ErrRemoved)
	}
}
