// Copyright 2023 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mmio gives device drivers access to memory-mapped hardware: small
// control-register windows and larger device-visible buffers such as
// framebuffers.
//
// An Arena is the source of such memory. On a real board it is backed by
// /dev/mem and a u-dma-buf pool (see DevMem); in tests it is backed by plain
// byte slices (see mmiotest).
package mmio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors returned by Arena implementations.
var (
	// ErrMap is returned when a physical address range cannot be mapped.
	ErrMap = errors.New("mmio: mapping failed")
	// ErrAlloc is returned when no device-visible memory can be allocated.
	ErrAlloc = errors.New("mmio: allocation failed")
)

// Origin records how a Region's memory was obtained. It decides how the
// Region must be released; the release path is never inferred from the
// addresses themselves.
type Origin int

// Valid Origin values.
const (
	// MappedExternal is memory at a caller-supplied physical address that was
	// mapped into the process. Closing it reverses the mapping only.
	MappedExternal Origin = iota
	// AllocatedCoherent is freshly allocated DMA-coherent memory owned by the
	// Region. Closing it returns the allocation to its pool.
	AllocatedCoherent
)

func (o Origin) String() string {
	switch o {
	case MappedExternal:
		return "mapped-external"
	case AllocatedCoherent:
		return "allocated-coherent"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Arena supplies device-visible memory.
//
// Both methods hand over exclusive ownership of the returned Region to the
// caller, who must Close it exactly once.
type Arena interface {
	// MapPhys maps size bytes starting at the physical address phys. The
	// returned Region has origin MappedExternal and Bus() == phys.
	MapPhys(phys uint64, size int) (*Region, error)
	// AllocCoherent allocates size bytes, rounded up to the arena's page
	// granularity, of memory visible to both the CPU and the device without
	// explicit cache synchronization. The returned Region has origin
	// AllocatedCoherent and Bus() set to the device-visible address.
	AllocCoherent(size int) (*Region, error)
	// PageSize returns the allocation granularity of AllocCoherent.
	PageSize() int
}

// OpKind identifies an operation observed on a Region.
type OpKind int

// Observable Region operations.
const (
	OpRead32 OpKind = iota
	OpWrite32
	OpZero
	OpClose
)

// Op is a single observed Region operation. Offset and Value are only
// meaningful for OpRead32 and OpWrite32.
type Op struct {
	Kind   OpKind
	Origin Origin
	Offset uint32
	Value  uint32
}

// Region is an exclusively owned view of device-visible memory.
//
// A Region is not safe for concurrent use.
type Region struct {
	mem     []byte
	bus     uint64
	origin  Origin
	release func(mem []byte) error
	observe func(Op)
	closed  bool
}

// NewRegion wraps mem as a Region. bus is the device-visible address of
// mem[0] and release is invoked exactly once on Close; it receives mem and
// must perform the teardown matching origin. Arena implementations are the
// intended callers.
func NewRegion(mem []byte, bus uint64, origin Origin, release func(mem []byte) error) *Region {
	return &Region{mem: mem, bus: bus, origin: origin, release: release}
}

// Observe installs fn as the operation observer. Every Read32, Write32,
// Zero and Close is reported. Used by mmiotest to trace hardware access
// ordering; a nil fn removes the observer.
func (r *Region) Observe(fn func(Op)) {
	r.observe = fn
}

// Bytes returns the mapped memory. The slice stays valid until Close.
func (r *Region) Bytes() []byte {
	return r.mem
}

// Bus returns the device-visible (bus) address of the region.
func (r *Region) Bus() uint64 {
	return r.bus
}

// Size returns the region length in bytes.
func (r *Region) Size() int {
	return len(r.mem)
}

// Origin returns the provenance of the region's memory.
func (r *Region) Origin() Origin {
	return r.origin
}

// Read32 loads the 32-bit register at byte offset off*4.
//
// Registers are little-endian, matching the AXI bus the devices sit on.
// An offset outside the region is a programming error and panics.
func (r *Region) Read32(off uint32) uint32 {
	r.checkReg(off)
	v := binary.LittleEndian.Uint32(r.mem[off*4:])
	if r.observe != nil {
		r.observe(Op{Kind: OpRead32, Origin: r.origin, Offset: off, Value: v})
	}
	return v
}

// Write32 stores val to the 32-bit register at byte offset off*4.
//
// An offset outside the region is a programming error and panics.
func (r *Region) Write32(off, val uint32) {
	r.checkReg(off)
	binary.LittleEndian.PutUint32(r.mem[off*4:], val)
	if r.observe != nil {
		r.observe(Op{Kind: OpWrite32, Origin: r.origin, Offset: off, Value: val})
	}
}

func (r *Region) checkReg(off uint32) {
	if r.closed {
		panic("mmio: access to closed region")
	}
	if int(off)*4+4 > len(r.mem) {
		panic(fmt.Sprintf("mmio: register offset %d outside %d byte region", off, len(r.mem)))
	}
}

// Zero clears the whole region with device-visible writes.
func (r *Region) Zero() {
	if r.closed {
		panic("mmio: access to closed region")
	}
	// The memory may be non-cacheable; plain byte stores are fine, but keep
	// it a single pass front to back.
	for i := range r.mem {
		r.mem[i] = 0
	}
	if r.observe != nil {
		r.observe(Op{Kind: OpZero, Origin: r.origin})
	}
}

// Close releases the region using the procedure matching its Origin:
// unmapping for MappedExternal, freeing the coherent allocation for
// AllocatedCoherent. The size, bus address and mapped address released are
// exactly the ones obtained at acquisition. A second Close is a no-op.
func (r *Region) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.observe != nil {
		r.observe(Op{Kind: OpClose, Origin: r.origin})
	}
	if r.release == nil {
		return nil
	}
	return r.release(r.mem)
}

// PageAlign rounds size up to the next multiple of page.
func PageAlign(size, page int) int {
	return (size + page - 1) &^ (page - 1)
}
