// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package sysent is the system call surface of the semaphore subsystem.

Each call takes the calling process and the user address of a NUL-terminated name.
Names are copied into a MaxNameLength buffer before anything else happens, and every
failure is reported as an Errno.
*/
package sysent

import (
	"github.com/xmidt-org/procsema/proc"
	"github.com/xmidt-org/procsema/semaphore"
	"github.com/xmidt-org/procsema/usermem"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// System call numbers.
const (
	SysAllocateSemaphore = 292
	SysDownSemaphore     = 293
	SysUpSemaphore       = 294
	SysFreeSemaphore     = 295
)

// System call names, as used in logs and metrics.
const (
	AllocateSemaphoreName = "allocate_semaphore"
	DownSemaphoreName     = "down_semaphore"
	UpSemaphoreName       = "up_semaphore"
	FreeSemaphoreName     = "free_semaphore"
)

type entry struct {
	name  string
	nargs int
	call  func(t *Table, p *proc.Process, args []uintptr) error
}

var entries = map[int]entry{
	SysAllocateSemaphore: {
		name:  AllocateSemaphoreName,
		nargs: 2,
		call: func(t *Table, p *proc.Process, args []uintptr) error {
			return t.AllocateSemaphore(p, usermem.Addr(args[0]), int(args[1]))
		},
	},
	SysDownSemaphore: {
		name:  DownSemaphoreName,
		nargs: 1,
		call: func(t *Table, p *proc.Process, args []uintptr) error {
			return t.DownSemaphore(p, usermem.Addr(args[0]))
		},
	},
	SysUpSemaphore: {
		name:  UpSemaphoreName,
		nargs: 1,
		call: func(t *Table, p *proc.Process, args []uintptr) error {
			return t.UpSemaphore(p, usermem.Addr(args[0]))
		},
	},
	SysFreeSemaphore: {
		name:  FreeSemaphoreName,
		nargs: 1,
		call: func(t *Table, p *proc.Process, args []uintptr) error {
			return t.FreeSemaphore(p, usermem.Addr(args[0]))
		},
	},
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the Table's logger.  If nil, sallust.Default() is used.
func WithLogger(l *zap.Logger) Option {
	return func(t *Table) {
		if l == nil {
			t.logger = sallust.Default()
		} else {
			t.logger = l
		}
	}
}

// WithMeasures sets the Table's metrics.  If nil, metrics are discarded.
func WithMeasures(m *Measures) Option {
	return func(t *Table) {
		if m == nil {
			t.measures = NewMeasures(nil)
		} else {
			t.measures = m
		}
	}
}

// Table dispatches semaphore system calls to a semaphore.Subsystem.
type Table struct {
	semaphores *semaphore.Subsystem
	logger     *zap.Logger
	measures   *Measures
}

// New creates a Table backed by the given Subsystem.
func New(s *semaphore.Subsystem, o ...Option) *Table {
	t := &Table{
		semaphores: s,
		logger:     sallust.Default(),
		measures:   NewMeasures(nil),
	}

	for _, f := range o {
		f(t)
	}

	return t
}

// Syscall invokes the system call with the given number.  Arguments are raw register
// values: user addresses for names and a signed count for allocation.  The returned
// error is always nil or an Errno.
func (t *Table) Syscall(p *proc.Process, number int, args ...uintptr) (int, error) {
	e, ok := entries[number]
	if !ok {
		return -1, ENOSYS
	}

	if len(args) < e.nargs {
		return -1, t.complete(e.name, p, EINVAL)
	}

	if err := e.call(t, p, args); err != nil {
		return -1, err
	}

	return 0, nil
}

// AllocateSemaphore creates a semaphore owned by p, named by the string at addr.
func (t *Table) AllocateSemaphore(p *proc.Process, addr usermem.Addr, initialCount int) error {
	name, err := copyName(p, addr)
	if err == nil {
		err = t.semaphores.Allocate(p, name, initialCount)
	}

	return t.complete(AllocateSemaphoreName, p, err)
}

// DownSemaphore decrements the semaphore p sees under the string at addr, blocking if necessary.
func (t *Table) DownSemaphore(p *proc.Process, addr usermem.Addr) error {
	name, err := copyName(p, addr)
	if err == nil {
		err = t.semaphores.Down(p, name)
	}

	return t.complete(DownSemaphoreName, p, err)
}

// UpSemaphore increments the semaphore p sees under the string at addr.
func (t *Table) UpSemaphore(p *proc.Process, addr usermem.Addr) error {
	name, err := copyName(p, addr)
	if err == nil {
		err = t.semaphores.Up(p, name)
	}

	return t.complete(UpSemaphoreName, p, err)
}

// FreeSemaphore destroys the semaphore p sees under the string at addr.
func (t *Table) FreeSemaphore(p *proc.Process, addr usermem.Addr) error {
	name, err := copyName(p, addr)
	if err == nil {
		err = t.semaphores.Free(p, name)
	}

	return t.complete(FreeSemaphoreName, p, err)
}

func copyName(p *proc.Process, addr usermem.Addr) (string, error) {
	name, _, err := usermem.CopyInString(p.Memory(), addr, semaphore.MaxNameLength)
	return name, err
}

// complete records the outcome of a call and converts err into an Errno.  A nil Errno
// is returned as a nil error, never as a typed nil.
func (t *Table) complete(call string, p *proc.Process, err error) error {
	errno := ToErrno(err)
	if errno == 0 {
		t.measures.Calls.With(CallLabel, call, ResultLabel, SuccessResult).Add(1.0)
		return nil
	}

	t.measures.Calls.With(CallLabel, call, ResultLabel, errno.Name()).Add(1.0)
	t.logger.Debug(
		"syscall failed",
		zap.String("call", call),
		zap.Stringer("pid", p.PID()),
		zap.String("errno", errno.Name()),
		zap.Error(err),
	)

	return errno
}
