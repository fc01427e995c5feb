// Copyright 2024 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gslcd controls the Gameslab LCD controller, a memory-mapped
// truecolor framebuffer device on the Zynq programmable logic.
//
// The controller has two 32-bit registers, a display enable and a
// framebuffer base pointer, and scans out packed 24-bit pixels. New brings
// a device up and publishes it to the fbreg registry; Halt tears it down.
//
// A Dev's control path (New, SetColor, SetPowerState, Draw, Halt) is not
// safe for concurrent use; the display subsystem serializes calls into a
// given device.
package gslcd

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/craigjb/gslinux/fbreg"
	"github.com/craigjb/gslinux/gslcd/rgb24"
	"github.com/craigjb/gslinux/mmio"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Compatible is the hardware identity tag the platform discovery layer
// binds this driver to.
const Compatible = "gslcd"

// Register map of the controller. Anything else in the block is reserved.
const (
	regEnable uint32 = 0 // bit 0: display enable
	regFBPtr  uint32 = 1 // framebuffer base, bus address
)

// regBlockSize is the size of the control register block in bytes.
const regBlockSize = 2 * 4

// paletteEntries is the fixed size of the color map.
const paletteEntries = 16

// ErrReleased is returned by operations on a device after Halt.
var ErrReleased = errors.New("gslcd: device released")

// State is the lifecycle state of a device.
type State int

// Lifecycle states. Released is terminal.
const (
	Uninitialized State = iota
	Active
	Blanked
	Released
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Blanked:
		return "blanked"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Dev is an open handle to the LCD controller.
type Dev struct {
	opts Opts

	regs *mmio.Region
	fb   *mmio.Region
	img  *rgb24.Image

	palette []uint32
	screen  *fbreg.Screen
	state   State
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}

// New maps the controller described by res, acquires framebuffer memory
// from a, points the hardware at it and publishes the screen to fbreg.
//
// With opts.FBPhys set, the framebuffer is mapped at that address and the
// memory stays owned by whoever reserved it; otherwise a fresh DMA-coherent
// buffer is allocated. Either way the buffer is cleared to black before the
// display is enabled.
//
// On any failure every resource acquired so far is released and the
// hardware is left disabled; a failed New holds nothing.
func New(a mmio.Arena, res Resources, opts *Opts) (*Dev, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if err := o.normalize(); err != nil {
		return nil, err
	}

	size := res.RegsSize
	if size == 0 {
		size = regBlockSize
	}
	regs, err := a.MapPhys(res.RegsPhys, size)
	if err != nil {
		return nil, fmt.Errorf("gslcd: map registers at %#x: %w", res.RegsPhys, err)
	}

	fbsize := o.VirtualWidth * o.VirtualHeight * rgb24.BytesPerPixel
	var fb *mmio.Region
	if o.FBPhys != 0 {
		fb, err = a.MapPhys(o.FBPhys, fbsize)
	} else {
		fb, err = a.AllocCoherent(fbsize)
	}
	if err != nil {
		regs.Close()
		return nil, fmt.Errorf("gslcd: framebuffer memory: %w", err)
	}

	// The device must never scan out stale memory: clear the whole buffer
	// before the hardware learns its address, enable strictly last.
	fb.Zero()
	regs.Write32(regFBPtr, uint32(fb.Bus()))
	regs.Write32(regEnable, 1)

	d := &Dev{
		opts:    o,
		regs:    regs,
		fb:      fb,
		img:     rgb24.Wrap(fb.Bytes(), o.VirtualWidth*rgb24.BytesPerPixel, image.Rect(0, 0, o.VirtualWidth, o.VirtualHeight)),
		palette: make([]uint32, paletteEntries),
		state:   Active,
	}
	d.screen = &fbreg.Screen{
		Name:          o.Name,
		Compatible:    Compatible,
		Width:         o.Width,
		Height:        o.Height,
		VirtualWidth:  o.VirtualWidth,
		VirtualHeight: o.VirtualHeight,
		ScreenWidth:   o.ScreenWidth,
		ScreenHeight:  o.ScreenHeight,
		Format:        fbreg.Truecolor24,
		FBBus:         fb.Bus(),
		Mem:           fb.Bytes(),
		FBLen:         fbsize,
		Stride:        o.VirtualWidth * rgb24.BytesPerPixel,
		Drawer:        d,
		SetColor:      d.SetColor,
		SetPowerState: d.SetPowerState,
	}
	if err := fbreg.Register(d.screen); err != nil {
		// Unwind in reverse acquisition order.
		d.palette = nil
		fb.Close()
		regs.Write32(regEnable, 0)
		regs.Close()
		return nil, fmt.Errorf("gslcd: publish %q: %w", o.Name, err)
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("gslcd.Dev{%s, %dx%d}", d.opts.Name, d.opts.Width, d.opts.Height)
}

// State returns the lifecycle state of the device.
func (d *Dev) State() State {
	return d.state
}

// Screen returns the descriptor published to fbreg, or nil after Halt.
func (d *Dev) Screen() *fbreg.Screen {
	return d.screen
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb24.Model
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.opts.Width, d.opts.Height)
}

// Draw implements display.Drawer by blitting src straight into the mapped
// framebuffer. The hardware scans the buffer continuously, so the result is
// visible immediately.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if d.state == Released {
		return ErrReleased
	}
	draw.Draw(d.img, r.Intersect(d.Bounds()), src, sp, draw.Src)
	return nil
}

// Image returns the full virtual framebuffer as a draw.Image sharing the
// mapped pixels. It must not be used after Halt.
func (d *Dev) Image() *rgb24.Image {
	return d.img
}

// Halt implements conn.Resource and tears the device down: the screen is
// withdrawn from fbreg, the color map dropped, the framebuffer released the
// way it was acquired and the display disabled.
//
// Halt never fails; every release step runs even if an earlier one
// reported an error. A second Halt is a no-op.
func (d *Dev) Halt() error {
	if d.state == Released {
		return nil
	}
	d.state = Released
	if d.screen != nil {
		_ = fbreg.Unregister(d.screen.Name)
		d.screen = nil
	}
	d.palette = nil
	d.img = nil
	if d.fb != nil {
		_ = d.fb.Close()
		d.fb = nil
	}
	d.regs.Write32(regEnable, 0)
	_ = d.regs.Close()
	return nil
}
