// Copyright 2024 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package fbreg is the registry of framebuffer screens.
//
// A display driver publishes a Screen descriptor once its hardware is up;
// consumers look screens up by name and use the descriptor's handles for
// drawing, palette updates and power management. The registry is the
// display subsystem's own serialization point: it is safe for concurrent
// use, while calls into a single screen's handles must be serialized by
// the caller.
package fbreg

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
)

// ErrRegistration is wrapped by every Register failure.
var ErrRegistration = errors.New("fbreg: registration failed")

// BlankMode is a display power state request, mirroring the classic fbdev
// blank levels.
type BlankMode int

// Valid BlankMode values.
const (
	// Unblank turns the display back on.
	Unblank BlankMode = iota
	// Normal blanks the display, sync signals still running.
	Normal
	// VSyncSuspend suspends vertical sync.
	VSyncSuspend
	// HSyncSuspend suspends horizontal sync.
	HSyncSuspend
	// PowerDown powers the panel off.
	PowerDown
)

func (m BlankMode) String() string {
	switch m {
	case Unblank:
		return "unblank"
	case Normal:
		return "normal"
	case VSyncSuspend:
		return "vsync-suspend"
	case HSyncSuspend:
		return "hsync-suspend"
	case PowerDown:
		return "powerdown"
	default:
		return fmt.Sprintf("BlankMode(%d)", int(m))
	}
}

// Format describes a packed truecolor pixel encoding by its channel shifts.
type Format struct {
	// Bits per pixel.
	Bits int
	// Shifts of the 8-bit channels inside the packed pixel word.
	RedShift, GreenShift, BlueShift uint8
}

func (f Format) String() string {
	return fmt.Sprintf("%dbpp r%d g%d b%d", f.Bits, f.RedShift, f.GreenShift, f.BlueShift)
}

// Truecolor24 is the packed 24-bit format red<<16 | green<<8 | blue with no
// transparency channel.
var Truecolor24 = Format{Bits: 24, RedShift: 16, GreenShift: 8, BlueShift: 0}

// Screen is the descriptor a display driver publishes.
//
// All fields are set by the driver before Register and stay constant until
// Unregister.
type Screen struct {
	// Name uniquely identifies the screen, e.g. "gslcd0".
	Name string
	// Compatible is the hardware identity tag the driver bound to.
	Compatible string

	// Width and Height are the visible resolution in pixels.
	Width, Height int
	// VirtualWidth and VirtualHeight are the dimensions of the backing
	// buffer, at least as large as the visible resolution.
	VirtualWidth, VirtualHeight int
	// ScreenWidth and ScreenHeight are the physical panel dimensions.
	ScreenWidth, ScreenHeight physic.Distance

	// Format is the pixel encoding.
	Format Format
	// FBBus is the device-visible address of the framebuffer.
	FBBus uint64
	// Mem is the CPU-visible framebuffer memory, valid until Unregister.
	Mem []byte
	// FBLen is the framebuffer length in bytes.
	FBLen int
	// Stride is the length of one buffer line in bytes.
	Stride int

	// Drawer draws into the framebuffer. Generic fill, copy and blit all go
	// through it (image/draw does the actual pixel work).
	Drawer display.Drawer
	// SetColor updates one palette entry from wide-precision channels.
	SetColor func(index, red, green, blue, transp uint32, grayscale bool) error
	// SetPowerState blanks or unblanks the screen.
	SetPowerState func(BlankMode) error
}

// Bounds returns the visible area as an image rectangle anchored at the
// origin.
func (s *Screen) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

var (
	mu     sync.Mutex
	byName = map[string]*Screen{}
)

// Register makes a screen available to consumers.
//
// It fails if the name is already taken or the descriptor is incomplete.
func Register(s *Screen) error {
	if s == nil || s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrRegistration)
	}
	if s.Drawer == nil || s.SetColor == nil || s.SetPowerState == nil {
		return fmt.Errorf("%w: screen %q has nil handles", ErrRegistration, s.Name)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: screen %q has no resolution", ErrRegistration, s.Name)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := byName[s.Name]; ok {
		return fmt.Errorf("%w: screen %q already registered", ErrRegistration, s.Name)
	}
	byName[s.Name] = s
	return nil
}

// Unregister withdraws a previously registered screen.
func Unregister(name string) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := byName[name]; !ok {
		return fmt.Errorf("fbreg: unknown screen %q", name)
	}
	delete(byName, name)
	return nil
}

// Open returns the screen registered under name. An empty name returns the
// first screen in lexical order, for the common one-panel case.
func Open(name string) (*Screen, error) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		all := namesLocked()
		if len(all) == 0 {
			return nil, errors.New("fbreg: no screen registered")
		}
		return byName[all[0]], nil
	}
	s, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("fbreg: unknown screen %q", name)
	}
	return s, nil
}

// All returns the names of all registered screens in lexical order.
func All() []string {
	mu.Lock()
	defer mu.Unlock()
	return namesLocked()
}

func namesLocked() []string {
	out := make([]string, 0, len(byName))
	for n := range byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
