// Copyright 2024 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gslcd

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// DefaultOpts is the configuration of the panel shipped on the Gameslab,
// an 800x480 4.3" TFT.
var DefaultOpts = Opts{
	Name:         "gslcd0",
	Width:        800,
	Height:       480,
	ScreenWidth:  108 * physic.MilliMetre,
	ScreenHeight: 65 * physic.MilliMetre,
}

// Opts defines the options for the device.
type Opts struct {
	// Name is the registry name the screen is published under.
	Name string
	// Width and Height are the visible resolution in pixels.
	Width, Height int
	// VirtualWidth and VirtualHeight are the dimensions of the framebuffer,
	// each at least the visible resolution. Zero means same as visible.
	VirtualWidth, VirtualHeight int
	// ScreenWidth and ScreenHeight are the physical panel dimensions.
	ScreenWidth, ScreenHeight physic.Distance
	// FBPhys, when non-zero, is a pre-assigned physical address to use as
	// framebuffer memory instead of allocating from the coherent pool.
	FBPhys uint64
}

// Resources locates the device on the bus, as handed over by the platform
// discovery layer.
type Resources struct {
	// RegsPhys is the physical address of the control register block.
	RegsPhys uint64
	// RegsSize is the register block size in bytes. Zero means the size of
	// the known register map.
	RegsSize int
}

func (o *Opts) normalize() error {
	if o.Name == "" {
		o.Name = DefaultOpts.Name
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("gslcd: invalid resolution %dx%d", o.Width, o.Height)
	}
	if o.VirtualWidth == 0 {
		o.VirtualWidth = o.Width
	}
	if o.VirtualHeight == 0 {
		o.VirtualHeight = o.Height
	}
	if o.VirtualWidth < o.Width || o.VirtualHeight < o.Height {
		return fmt.Errorf("gslcd: virtual resolution %dx%d smaller than visible %dx%d",
			o.VirtualWidth, o.VirtualHeight, o.Width, o.Height)
	}
	return nil
}
