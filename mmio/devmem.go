// Copyright 2023 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package mmio

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// DevMem is the Arena used on real hardware.
//
// Register windows are mapped through /dev/mem. DMA-coherent buffers come
// from a u-dma-buf pool, the stock mechanism for reserving device-visible
// memory on Zynq boards: the kernel module exposes the pool at /dev/<name>
// and its physical address under /sys/class/u-dma-buf/<name>/.
type DevMem struct {
	mem      *os.File
	pool     *os.File
	poolBus  uint64
	poolSize int
	poolOff  int
	page     int
}

// OpenDevMem opens /dev/mem and, if udmabuf is not empty, the named
// u-dma-buf pool for coherent allocations.
func OpenDevMem(udmabuf string) (*DevMem, error) {
	mem, err := os.OpenFile("/dev/mem", os.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: /dev/mem: %v", ErrMap, err)
	}
	d := &DevMem{mem: mem, page: unix.Getpagesize()}
	if udmabuf == "" {
		return d, nil
	}
	if err := d.openPool(udmabuf); err != nil {
		mem.Close()
		return nil, err
	}
	return d, nil
}

func (d *DevMem) openPool(name string) error {
	attr := "/sys/class/u-dma-buf/" + name + "/phys_addr"
	raw, err := os.ReadFile(attr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAlloc, attr, err)
	}
	bus, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x"), 16, 64)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAlloc, attr, err)
	}
	attr = "/sys/class/u-dma-buf/" + name + "/size"
	raw, err = os.ReadFile(attr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAlloc, attr, err)
	}
	size, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAlloc, attr, err)
	}
	pool, err := os.OpenFile("/dev/"+name, os.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return fmt.Errorf("%w: /dev/%s: %v", ErrAlloc, name, err)
	}
	d.pool = pool
	d.poolBus = bus
	d.poolSize = size
	return nil
}

// MapPhys implements Arena over /dev/mem.
func (d *DevMem) MapPhys(phys uint64, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid size %d", ErrMap, size)
	}
	// mmap offsets must be page aligned; keep the slack in front and hand
	// out the interior slice. Munmap gets the full mapping back.
	base := phys &^ uint64(d.page-1)
	head := int(phys - base)
	mapped, err := unix.Mmap(int(d.mem.Fd()), int64(base), head+size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: phys %#x +%d: %v", ErrMap, phys, size, err)
	}
	return NewRegion(mapped[head:head+size], phys, MappedExternal, func([]byte) error {
		return unix.Munmap(mapped)
	}), nil
}

// AllocCoherent implements Arena by carving the u-dma-buf pool.
//
// TODO: freed carvings are not returned to the pool; add a free list once a
// driver actually cycles allocations.
func (d *DevMem) AllocCoherent(size int) (*Region, error) {
	if d.pool == nil {
		return nil, fmt.Errorf("%w: no u-dma-buf pool configured", ErrAlloc)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid size %d", ErrAlloc, size)
	}
	size = PageAlign(size, d.page)
	if d.poolOff+size > d.poolSize {
		return nil, fmt.Errorf("%w: pool exhausted (%d of %d bytes used, want %d)",
			ErrAlloc, d.poolOff, d.poolSize, size)
	}
	mapped, err := unix.Mmap(int(d.pool.Fd()), int64(d.poolOff), size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %v", ErrAlloc, size, err)
	}
	bus := d.poolBus + uint64(d.poolOff)
	d.poolOff += size
	return NewRegion(mapped, bus, AllocatedCoherent, func([]byte) error {
		return unix.Munmap(mapped)
	}), nil
}

// PageSize implements Arena.
func (d *DevMem) PageSize() int {
	return d.page
}

// Close closes the underlying device files. Outstanding Regions keep their
// mappings until individually closed.
func (d *DevMem) Close() error {
	err := d.mem.Close()
	if d.pool != nil {
		if e := d.pool.Close(); err == nil {
			err = e
		}
	}
	return err
}
