// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package proc

import (
	"errors"
	"sync"

	"github.com/xmidt-org/procsema/usermem"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	// InitPID is the identifier of the root process.
	InitPID PID = 1

	// DefaultPriority is the priority of the init process.
	DefaultPriority = 50
)

var (
	// ErrNoSuchProcess is returned when operating on a process that is not in the table.
	ErrNoSuchProcess = errors.New("no such process")

	// ErrInit is returned when attempting to exit the init process.
	ErrInit = errors.New("the init process cannot exit")
)

// ForkHook is invoked after a child process has been created, before Fork returns.
type ForkHook func(parent, child *Process)

// ExitHook is invoked when a process exits, after it has been killed and before it
// leaves the table.
type ExitHook func(*Process)

// Option is a configuration option for a Table.
type Option func(*Table)

// WithLogger sets the logger for a Table.  If nil, sallust.Default() is used.
func WithLogger(l *zap.Logger) Option {
	return func(t *Table) {
		if l == nil {
			t.logger = sallust.Default()
		} else {
			t.logger = l
		}
	}
}

// WithInitPriority sets the priority of the init process.
func WithInitPriority(priority int) Option {
	return func(t *Table) {
		t.init.priority = priority
	}
}

// Table is the process table.  It always contains init, which has no parent and never exits.
type Table struct {
	logger *zap.Logger

	lock    sync.RWMutex
	nextPID PID
	init    *Process
	procs   map[PID]*Process

	hookLock  sync.RWMutex
	forkHooks []ForkHook
	exitHooks []ExitHook
}

// NewTable returns a process table containing only init.
func NewTable(o ...Option) *Table {
	t := &Table{
		logger:  sallust.Default(),
		nextPID: InitPID + 1,
		procs:   make(map[PID]*Process),
	}

	t.init = newProcess(t, InitPID, nil, usermem.NewMemory())
	t.init.priority = DefaultPriority
	t.procs[InitPID] = t.init

	for _, f := range o {
		f(t)
	}

	return t
}

// Init returns the root process.
func (t *Table) Init() *Process {
	return t.init
}

// OnFork registers a hook run for every subsequent Fork.
func (t *Table) OnFork(h ForkHook) {
	defer t.hookLock.Unlock()
	t.hookLock.Lock()
	t.forkHooks = append(t.forkHooks, h)
}

// OnExit registers a hook run for every subsequent Exit.
func (t *Table) OnExit(h ExitHook) {
	defer t.hookLock.Unlock()
	t.hookLock.Lock()
	t.exitHooks = append(t.exitHooks, h)
}

// Lookup returns the live process with the given pid.
func (t *Table) Lookup(pid PID) (*Process, bool) {
	defer t.lock.RUnlock()
	t.lock.RLock()
	p, ok := t.procs[pid]
	return p, ok
}

// Len returns the number of live processes, init included.
func (t *Table) Len() int {
	defer t.lock.RUnlock()
	t.lock.RLock()
	return len(t.procs)
}

// Fork creates a child of parent.  The child gets a copy of the parent's address space
// and its priority.  Fork hooks run before the child is returned.
func (t *Table) Fork(parent *Process) (*Process, error) {
	t.lock.Lock()
	if t.procs[parent.pid] != parent {
		t.lock.Unlock()
		return nil, ErrNoSuchProcess
	}

	child := newProcess(t, t.nextPID, parent, parent.memory.Clone())
	child.priority = parent.priority
	t.nextPID++
	t.procs[child.pid] = child
	t.lock.Unlock()

	t.logger.Debug("fork", zap.Stringer("parent", parent.pid), zap.Stringer("child", child.pid))

	t.hookLock.RLock()
	hooks := t.forkHooks
	t.hookLock.RUnlock()

	for _, h := range hooks {
		h(parent, child)
	}

	return child, nil
}

// Exit terminates p.  A goroutine sleeping on p is resumed with ErrKilled, exit hooks
// run, p's children are reparented to init, and p is removed from the table.
func (t *Table) Exit(p *Process) error {
	if p == t.init {
		return ErrInit
	}

	if _, ok := t.Lookup(p.pid); !ok {
		return ErrNoSuchProcess
	}

	p.kill()

	t.hookLock.RLock()
	hooks := t.exitHooks
	t.hookLock.RUnlock()

	for _, h := range hooks {
		h(p)
	}

	defer t.lock.Unlock()
	t.lock.Lock()
	if t.procs[p.pid] != p {
		// a concurrent Exit got here first
		return ErrNoSuchProcess
	}

	for _, c := range t.procs {
		if c.parent == p {
			c.parent = t.init
		}
	}

	delete(t.procs, p.pid)
	t.logger.Debug("exit", zap.Stringer("pid", p.pid))
	return nil
}
