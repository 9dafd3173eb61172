// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package usermem

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrFault is returned when a read touches an address that is not mapped.
	ErrFault = errors.New("bad address")
)

const (
	// BaseAddr is the address of the first region mapped in a new Memory.
	BaseAddr Addr = 0x1000

	// guardSize is the unmapped gap left after every region, so that running off
	// the end of one region never lands in the next.
	guardSize Addr = 0x1000
)

// Addr is a user virtual address.  The zero Addr is never mapped.
type Addr uintptr

// Space is the read side of a user address space.  ReadAt behaves like io.ReaderAt,
// except that a short read is always accompanied by ErrFault.
type Space interface {
	ReadAt(b []byte, addr Addr) (int, error)
}

type region struct {
	base Addr
	data []byte
}

func (r region) end() Addr {
	return r.base + Addr(len(r.data))
}

// Memory is a sparse, region-based Space.  The zero value is not usable; use NewMemory.
type Memory struct {
	lock    sync.RWMutex
	next    Addr
	regions []region
}

// NewMemory returns an empty address space.
func NewMemory() *Memory {
	return &Memory{
		next: BaseAddr,
	}
}

// Map copies b into a new region and returns its base address.  An empty b still
// consumes an address, but reading from it faults.
func (m *Memory) Map(b []byte) Addr {
	defer m.lock.Unlock()
	m.lock.Lock()

	r := region{
		base: m.next,
		data: append([]byte(nil), b...),
	}

	m.regions = append(m.regions, r)
	m.next = r.end() + guardSize
	if len(b) == 0 {
		m.next++
	}

	return r.base
}

// MapString maps s followed by a NUL terminator.
func (m *Memory) MapString(s string) Addr {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return m.Map(b)
}

// Unmap releases the region starting at addr.  It returns false if no region starts there.
func (m *Memory) Unmap(addr Addr) bool {
	defer m.lock.Unlock()
	m.lock.Lock()

	for i, r := range m.regions {
		if r.base == addr {
			m.regions = append(m.regions[:i], m.regions[i+1:]...)
			return true
		}
	}

	return false
}

// Clone returns a copy of this address space.  Addresses valid in m are valid in the clone.
func (m *Memory) Clone() *Memory {
	defer m.lock.RUnlock()
	m.lock.RLock()

	c := &Memory{
		next:    m.next,
		regions: make([]region, len(m.regions)),
	}

	for i, r := range m.regions {
		c.regions[i] = region{
			base: r.base,
			data: append([]byte(nil), r.data...),
		}
	}

	return c
}

// find returns the region containing addr.  regions are kept in increasing base order
// because Map only ever hands out increasing addresses.
func (m *Memory) find(addr Addr) (region, bool) {
	i := sort.Search(len(m.regions), func(i int) bool {
		return m.regions[i].end() > addr
	})

	if i < len(m.regions) && m.regions[i].base <= addr {
		return m.regions[i], true
	}

	return region{}, false
}

// ReadAt implements Space.  Regions never touch, so a read that crosses the end of a
// region always faults.
func (m *Memory) ReadAt(b []byte, addr Addr) (int, error) {
	defer m.lock.RUnlock()
	m.lock.RLock()

	if len(b) == 0 {
		return 0, nil
	}

	r, ok := m.find(addr)
	if !ok {
		return 0, ErrFault
	}

	n := copy(b, r.data[addr-r.base:])
	if n < len(b) {
		return n, ErrFault
	}

	return n, nil
}
