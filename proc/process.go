// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package proc

import (
	"errors"
	"strconv"
	"sync"

	"github.com/xmidt-org/procsema/usermem"
)

var (
	// ErrKilled is returned from Sleep when the process was killed before it became ready.
	ErrKilled = errors.New("the process has been killed")
)

// PID is a process identifier.
type PID int

func (pid PID) String() string {
	return strconv.Itoa(int(pid))
}

// Process is a host process.  Each process has exactly one thread of control, so
// at most one goroutine sleeps on a given Process at a time.
type Process struct {
	pid    PID
	table  *Table
	memory *usermem.Memory

	// parent and priority are guarded by the table's lock
	parent   *Process
	priority int

	sleepLock sync.Mutex
	sleepCond *sync.Cond
	sleeping  bool
	killed    bool
}

func newProcess(t *Table, pid PID, parent *Process, memory *usermem.Memory) *Process {
	p := &Process{
		pid:    pid,
		table:  t,
		memory: memory,
		parent: parent,
	}

	p.sleepCond = sync.NewCond(&p.sleepLock)
	return p
}

// PID returns this process's identifier.
func (p *Process) PID() PID {
	return p.pid
}

func (p *Process) String() string {
	return "process " + p.pid.String()
}

// Parent returns the current parent of this process, or nil for init.  The parent
// changes when the original parent exits and this process is reparented to init.
func (p *Process) Parent() *Process {
	defer p.table.lock.RUnlock()
	p.table.lock.RLock()
	return p.parent
}

// Priority returns the scheduling priority of this process.
func (p *Process) Priority() int {
	defer p.table.lock.RUnlock()
	p.table.lock.RLock()
	return p.priority
}

// SetPriority changes the scheduling priority of this process.  Children forked
// afterwards inherit the new value.
func (p *Process) SetPriority(priority int) {
	defer p.table.lock.Unlock()
	p.table.lock.Lock()
	p.priority = priority
}

// Memory returns the user address space of this process.
func (p *Process) Memory() *usermem.Memory {
	return p.memory
}

// Sleep parks the calling goroutine on this process until ready returns true.  ready is
// always evaluated with the sleep lock held, so state it examines must only be changed
// from within a Wakeup function.
//
// A resumption that leaves ready false is treated as spurious and the process goes
// back to sleep.  If the process is killed while not ready, ErrKilled is returned.
func (p *Process) Sleep(ready func() bool) error {
	defer p.sleepLock.Unlock()
	p.sleepLock.Lock()

	for !ready() {
		if p.killed {
			return ErrKilled
		}

		p.sleeping = true
		p.sleepCond.Wait()
		p.sleeping = false
	}

	return nil
}

// Wakeup runs fn with the sleep lock held, then resumes this process if it is sleeping.
// A nil fn is a bare wakeup, which a sleeper will absorb.
func (p *Process) Wakeup(fn func()) {
	p.sleepLock.Lock()
	if fn != nil {
		fn()
	}

	p.sleepLock.Unlock()
	p.sleepCond.Broadcast()
}

// Inspect runs fn with the sleep lock held, without resuming the process.
func (p *Process) Inspect(fn func()) {
	defer p.sleepLock.Unlock()
	p.sleepLock.Lock()
	fn()
}

// Sleeping reports whether a goroutine is currently parked on this process.
func (p *Process) Sleeping() bool {
	defer p.sleepLock.Unlock()
	p.sleepLock.Lock()
	return p.sleeping
}

// Killed reports whether this process has been killed.
func (p *Process) Killed() bool {
	defer p.sleepLock.Unlock()
	p.sleepLock.Lock()
	return p.killed
}

func (p *Process) kill() {
	p.Wakeup(func() {
		p.killed = true
	})
}
