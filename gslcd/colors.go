// Copyright 2024 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gslcd

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for a palette index outside the fixed 16-entry
// color map.
var ErrOutOfRange = errors.New("gslcd: palette index out of range")

// Channel positions in a packed pixel, also advertised through
// fbreg.Truecolor24.
const (
	redShift   = 16
	greenShift = 8
	blueShift  = 0
)

// SetColor reduces a wide-precision color to the device's packed 24-bit
// encoding and stores it in the color map.
//
// Channels carry their significant bits in the top 8 of a 16-bit value, as
// the display subsystem hands them over. With grayscale set, all three
// channels are replaced by the luminance 0.30*R + 0.59*G + 0.11*B before
// packing. The device has no transparency channel; transp is ignored.
//
// Only the color map entry is touched, never the hardware.
func (d *Dev) SetColor(index, red, green, blue, transp uint32, grayscale bool) error {
	if index >= paletteEntries {
		return fmt.Errorf("%w: %d >= %d", ErrOutOfRange, index, paletteEntries)
	}
	if d.state == Released {
		return ErrReleased
	}

	// Only the top 8 bits of each channel are significant.
	red >>= 8
	green >>= 8
	blue >>= 8

	if grayscale {
		// Fixed-point 77/256, 151/256, 28/256 ~ 0.30, 0.59, 0.11, rounded.
		y := (red*77 + green*151 + blue*28 + 127) >> 8
		red, green, blue = y, y, y
	}

	d.palette[index] = red<<redShift | green<<greenShift | blue<<blueShift
	return nil
}

// Palette returns the packed color stored at index. The display subsystem's
// generic fill and blit use it to resolve color map references.
func (d *Dev) Palette(index uint32) (uint32, error) {
	if index >= paletteEntries {
		return 0, fmt.Errorf("%w: %d >= %d", ErrOutOfRange, index, paletteEntries)
	}
	if d.state == Released {
		return 0, ErrReleased
	}
	return d.palette[index], nil
}
