// Copyright 2023 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mmiotest is meant to be used to test drivers using the mmio
// package.
//
// Arena hands out Regions backed by plain byte slices, keeps a count of
// live acquisitions and records every map, allocation and register access
// in order, so tests can assert both resource balance and hardware write
// ordering.
package mmiotest

import (
	"github.com/craigjb/gslinux/mmio"
)

// EventKind identifies a recorded arena or region operation.
type EventKind int

// Recorded operations.
const (
	Map EventKind = iota
	Alloc
	Read32
	Write32
	Zero
	Close
)

func (k EventKind) String() string {
	switch k {
	case Map:
		return "map"
	case Alloc:
		return "alloc"
	case Read32:
		return "read32"
	case Write32:
		return "write32"
	case Zero:
		return "zero"
	case Close:
		return "close"
	default:
		return "invalid"
	}
}

// Event is one recorded operation. Phys and Size are set for Map and Alloc;
// Offset and Value for Read32 and Write32.
type Event struct {
	Kind   EventKind
	Origin mmio.Origin
	Phys   uint64
	Size   int
	Offset uint32
	Value  uint32
}

// Arena is a fake mmio.Arena backed by ordinary memory.
//
// The zero value is ready to use.
type Arena struct {
	// Page overrides the allocation granularity. Defaults to 4096.
	Page int
	// Bus is the device-visible address handed to the next AllocCoherent.
	// Each allocation advances it. Defaults to 0x1000_0000.
	Bus uint64
	// MapErr and AllocErr, when set, make the corresponding acquisition
	// fail. Used to test driver unwind paths.
	MapErr   error
	AllocErr error
	// Ops records every operation in order.
	Ops []Event

	live int
}

var _ mmio.Arena = &Arena{}

// MapPhys implements mmio.Arena. The returned region reads back as zero
// filled, like a device register block after reset.
func (a *Arena) MapPhys(phys uint64, size int) (*mmio.Region, error) {
	if a.MapErr != nil {
		return nil, a.MapErr
	}
	a.Ops = append(a.Ops, Event{Kind: Map, Origin: mmio.MappedExternal, Phys: phys, Size: size})
	return a.region(make([]byte, size), phys, mmio.MappedExternal), nil
}

// AllocCoherent implements mmio.Arena.
func (a *Arena) AllocCoherent(size int) (*mmio.Region, error) {
	if a.AllocErr != nil {
		return nil, a.AllocErr
	}
	size = mmio.PageAlign(size, a.PageSize())
	bus := a.Bus
	if bus == 0 {
		bus = 0x10000000
	}
	a.Bus = bus + uint64(size)
	a.Ops = append(a.Ops, Event{Kind: Alloc, Origin: mmio.AllocatedCoherent, Phys: bus, Size: size})
	return a.region(make([]byte, size), bus, mmio.AllocatedCoherent), nil
}

// PageSize implements mmio.Arena.
func (a *Arena) PageSize() int {
	if a.Page == 0 {
		return 4096
	}
	return a.Page
}

// Live returns the number of regions acquired from the arena and not yet
// closed. A driver that cleans up after itself leaves it at zero.
func (a *Arena) Live() int {
	return a.live
}

// Filter returns the recorded events of the given kinds, in order.
func (a *Arena) Filter(kinds ...EventKind) []Event {
	var out []Event
	for _, e := range a.Ops {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
			}
		}
	}
	return out
}

func (a *Arena) region(mem []byte, bus uint64, origin mmio.Origin) *mmio.Region {
	a.live++
	r := mmio.NewRegion(mem, bus, origin, func([]byte) error {
		a.live--
		return nil
	})
	r.Observe(func(op mmio.Op) {
		e := Event{Origin: op.Origin, Offset: op.Offset, Value: op.Value}
		switch op.Kind {
		case mmio.OpRead32:
			e.Kind = Read32
		case mmio.OpWrite32:
			e.Kind = Write32
		case mmio.OpZero:
			e.Kind = Zero
		case mmio.OpClose:
			e.Kind = Close
		}
		a.Ops = append(a.Ops, e)
	})
	return r
}
