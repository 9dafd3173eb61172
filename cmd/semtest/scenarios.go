// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xmidt-org/procsema/proc"
)

const (
	allScenarios = "all"

	tooLongName = "abcdefghijklmnopqrstuvwxyz01234567890"
)

var (
	errUnknownScenario = errors.New("unknown scenario")
	errNoSibling       = errors.New("sibling was never forked")
)

type scenario struct {
	name  string
	title string
	run   func(*driver, *proc.Process) error
}

var scenarios = []scenario{
	{name: "basic", title: "PART 1: BASIC CALLS", run: basicCalls},
	{name: "inheritance", title: "PART 2: INHERITANCE", run: inheritance},
	{name: "fairness", title: "PART 3: FAIRNESS", run: fairness},
	{name: "exit", title: "PART 4: FREE ON EXIT", run: freeOnExit},
}

func selectScenarios(selected string) ([]scenario, error) {
	if selected == allScenarios {
		return scenarios, nil
	}

	for _, s := range scenarios {
		if s.name == selected {
			return []scenario{s}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", errUnknownScenario, selected)
}

// runScenarios runs each scenario in a fresh process forked from init.  The process
// exits afterward, which frees anything the scenario left behind.
func (d *driver) runScenarios(selected []scenario) error {
	d.printf("=============== START SEMAPHORE TEST ===============")
	for _, s := range selected {
		d.printf("")
		d.printf("_________________ %s _________________", s.title)

		p, err := d.procs.Fork(d.procs.Init())
		if err != nil {
			return err
		}

		err = s.run(d, p)
		if exitErr := d.procs.Exit(p); exitErr != nil && !errors.Is(exitErr, proc.ErrNoSuchProcess) {
			return exitErr
		}

		if err != nil {
			return fmt.Errorf("scenario %s: %w", s.name, err)
		}

		d.printf("_________________ END %s _________________", s.title)
	}

	d.printf("")
	d.printf("=============== END SEMAPHORE TEST =================")
	return nil
}

func basicCalls(d *driver, p *proc.Process) error {
	d.printf("CREATE SEMAPHORE:")
	d.create(p, "Sem1", 0)
	d.create(p, "Sem1", 0)
	d.create(p, tooLongName, 0)
	d.create(p, "Sem_negative", -1)

	d.printf("UP SEMAPHORE:")
	d.up(p, "Sem1")
	d.up(p, "Sem_noexist")

	d.printf("DELETE:")
	d.remove(p, "Sem1")
	d.remove(p, "Sem_noexist")
	d.remove(p, "Sem1")

	d.printf("UP SEMAPHORE:")
	d.up(p, "Sem1")
	d.up(p, tooLongName)
	return nil
}

// inheritance has child 2 block on the parent's Sem_P while child 1 shadows it with a
// semaphore of its own.  Only ups that reach the parent's Sem_P release child 2.
func inheritance(d *driver, parent *proc.Process) error {
	d.create(parent, "Sem_P", 0)

	sibling := make(chan child, 1)
	child1, err := d.fork(parent, "1", func(p *proc.Process) error {
		d.printf("Child 1: START")
		d.create(p, "Sem_C1", 0)
		d.create(p, "Sem_P", 0)

		child2, ok := <-sibling
		if !ok {
			return errNoSibling
		}

		d.printf("DOWN SEMAPHORE (Child 1):")
		d.down(p, "Sem_random")
		d.down(p, "Sem_C2")

		if err := d.blocked(child2.Process); err != nil {
			return err
		}

		d.printf("Child 1 (NOTE): Child 2 is blocked on the inherited Sem_P. Child 1 has its own Sem_P")
		d.printf("UP SEMAPHORE (Child 1):")
		d.up(p, "Sem_P")

		d.printf("REMOVE SEMAPHORE (Child 1):")
		d.remove(p, "Sem_P")

		d.printf("UP SEMAPHORE (Child 1): Sem_P now resolves to the parent's")
		for i := 0; i < 5; i++ {
			d.up(p, "Sem_P")
		}

		if err := d.wait(child2); err != nil {
			return err
		}

		d.printf("FREE SEMAPHORE (Child 1):")
		d.remove(p, "Sem_P")
		d.remove(p, "Sem_C1")
		d.remove(p, "Sem_C2")
		d.printf("Child 1: END")
		return nil
	})

	if err != nil {
		return err
	}

	child2, err := d.fork(parent, "2", func(p *proc.Process) error {
		d.printf("Child 2: START")
		d.create(p, "Sem_C2", 0)

		d.printf("DOWN SEMAPHORE (Child 2):")
		d.down(p, "Sem_P")
		d.printf("Child 2: completed down")

		d.printf("DOWN SEMAPHORE (Child 2):")
		for i := 0; i < 4; i++ {
			d.down(p, "Sem_P")
		}

		d.printf("FREE SEMAPHORE (Child 2):")
		d.remove(p, "Sem_P")
		d.remove(p, "Sem_C1")
		d.remove(p, "Sem_C2")
		d.printf("Child 2: END")
		return nil
	})

	if err != nil {
		close(sibling)
		d.wait(child1)
		return err
	}

	sibling <- child2
	return d.wait(child1)
}

// fairness queues three children on Fair, in fork order, then releases them one up at a time.
func fairness(d *driver, parent *proc.Process) error {
	d.create(parent, "Fair", 0)

	waiters := make([]child, 0, 3)
	for i := 1; i <= 3; i++ {
		i := i
		c, err := d.fork(parent, strconv.Itoa(i), func(p *proc.Process) error {
			d.printf("Child %d: DOWN SEMAPHORE", i)
			d.down(p, "Fair")
			d.printf("Child %d: completed down .... exiting", i)
			return nil
		})

		if err != nil {
			return err
		}

		if err := d.blocked(c.Process); err != nil {
			return err
		}

		waiters = append(waiters, c)
	}

	upper, err := d.fork(parent, "4", func(p *proc.Process) error {
		for _, c := range waiters {
			d.printf("Child 4: up semaphore, then wait for %s", c.Process)
			d.up(p, "Fair")
			if err := d.wait(c); err != nil {
				return err
			}
		}

		d.printf("Child 4: exiting")
		return nil
	})

	if err != nil {
		return err
	}

	return d.wait(upper)
}

// freeOnExit has the parent exit while its child still uses the parent's semaphores.
func freeOnExit(d *driver, parent *proc.Process) error {
	d.create(parent, "Sem A", 0)
	d.create(parent, "Sem B", 0)

	var (
		ready        = make(chan struct{})
		parentExited = make(chan struct{})
	)

	c, err := d.fork(parent, "1", func(p *proc.Process) error {
		d.printf("Child: START")
		d.up(p, "Sem A")
		d.up(p, "Sem B")
		d.up(p, "Sem Control")
		close(ready)

		<-parentExited
		d.up(p, "Sem A")
		d.up(p, "Sem B")
		d.up(p, "Sem Control")
		d.printf("Child: END")
		return nil
	})

	if err != nil {
		return err
	}

	<-ready
	d.printf("Parent: END")
	err = d.procs.Exit(parent)
	close(parentExited)
	if err != nil {
		return err
	}

	return d.wait(c)
}
