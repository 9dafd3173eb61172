// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import "github.com/xmidt-org/procsema/proc"

// registry is one process's set of owned semaphores, newest first, plus its inherited flag.
type registry struct {
	owned     []*Semaphore
	inherited bool
}

// visible reports whether the ancestry walk may look at, and continue past, this registry.
func (r *registry) visible() bool {
	return r != nil && (len(r.owned) > 0 || r.inherited)
}

func (r *registry) find(name string, owner *proc.Process) *Semaphore {
	for _, s := range r.owned {
		if s.name == name && s.owner == owner {
			return s
		}
	}

	return nil
}

func (r *registry) insert(s *Semaphore) {
	r.owned = append([]*Semaphore{s}, r.owned...)
}

func (r *registry) remove(s *Semaphore) bool {
	for i, candidate := range r.owned {
		if candidate == s {
			r.owned = append(r.owned[:i], r.owned[i+1:]...)
			return true
		}
	}

	return false
}

// resolve walks from p toward init and returns the nearest semaphore named name that is
// owned by the process whose registry holds it.  The walk ends at the first process
// that owns nothing and is not inherited.  The caller must hold the subsystem lock.
func (s *Subsystem) resolve(p *proc.Process, name string) *Semaphore {
	for current := p; current != nil; current = current.Parent() {
		r := s.registries[current]
		if !r.visible() {
			return nil
		}

		if found := r.find(name, current); found != nil {
			return found
		}
	}

	return nil
}
