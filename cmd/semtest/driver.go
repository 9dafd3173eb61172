// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/xmidt-org/procsema/proc"
	"github.com/xmidt-org/procsema/sysent"
	"go.uber.org/zap"
)

var errStillRunning = errors.New("process did not make progress in time")

// driver issues semaphore system calls on behalf of simulated processes and prints one
// status line per call.  Lines from concurrent processes never interleave.
type driver struct {
	logger  *zap.Logger
	procs   *proc.Table
	sysent  *sysent.Table
	timeout time.Duration

	lock sync.Mutex
	out  io.Writer
}

// child is a forked process running on its own goroutine.
type child struct {
	*proc.Process
	done <-chan error
}

func (d *driver) printf(format string, args ...interface{}) {
	defer d.lock.Unlock()
	d.lock.Lock()
	fmt.Fprintf(d.out, format+"\n", args...)
}

func (d *driver) status(action string, err error) {
	if err == nil {
		d.printf("%s .... SUCCESS", action)
		return
	}

	var errno sysent.Errno
	if errors.As(err, &errno) {
		d.printf("%s .... ERROR: %s", action, errno.Name())
	} else {
		d.printf("%s .... ERROR: UNKNOWN", action)
	}
}

// name places a semaphore name in p's address space, the way a user program passes a
// string literal to a system call.
func name(p *proc.Process, n string) uintptr {
	return uintptr(p.Memory().MapString(n))
}

func (d *driver) create(p *proc.Process, n string, count int) {
	_, err := d.sysent.Syscall(p, sysent.SysAllocateSemaphore, name(p, n), uintptr(count))
	d.status(fmt.Sprintf("creating semaphore (%s, %d)", n, count), err)
}

func (d *driver) remove(p *proc.Process, n string) {
	_, err := d.sysent.Syscall(p, sysent.SysFreeSemaphore, name(p, n))
	d.status(fmt.Sprintf("removing semaphore (%s)", n), err)
}

func (d *driver) down(p *proc.Process, n string) {
	_, err := d.sysent.Syscall(p, sysent.SysDownSemaphore, name(p, n))
	d.status(fmt.Sprintf("down on semaphore (%s)", n), err)
}

func (d *driver) up(p *proc.Process, n string) {
	_, err := d.sysent.Syscall(p, sysent.SysUpSemaphore, name(p, n))
	d.status(fmt.Sprintf("up on semaphore (%s)", n), err)
}

// fork creates a child of parent running body on its own goroutine.  The child exits
// when body returns.
func (d *driver) fork(parent *proc.Process, label string, body func(*proc.Process) error) (child, error) {
	d.printf("Parent about to fork .... (%s)", label)
	p, err := d.procs.Fork(parent)
	if err != nil {
		return child{}, err
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := body(p)
		d.exit(p)
		done <- err
	}()

	return child{Process: p, done: done}, nil
}

// exit terminates p.  A process that is already gone is not an error.
func (d *driver) exit(p *proc.Process) {
	if err := d.procs.Exit(p); err != nil && !errors.Is(err, proc.ErrNoSuchProcess) {
		d.logger.DPanic("unable to exit process", zap.Stringer("process", p), zap.Error(err))
	}
}

// wait waits for a forked child to finish and returns the error its body returned.
func (d *driver) wait(c child) error {
	select {
	case err := <-c.done:
		return err
	case <-time.After(d.timeout):
		return fmt.Errorf("%s: %w", c.Process, errStillRunning)
	}
}

// blocked waits until p is parked in the kernel.
func (d *driver) blocked(p *proc.Process) error {
	deadline := time.Now().Add(d.timeout)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for !p.Sleeping() {
		if time.Now().After(deadline) {
			return fmt.Errorf("%s: %w", p, errStillRunning)
		}

		<-ticker.C
	}

	return nil
}
