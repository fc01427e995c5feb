// Copyright 2024 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gslcd

import (
	"github.com/craigjb/gslinux/fbreg"
)

// SetPowerState blanks or unblanks the panel.
//
// The hardware only distinguishes on and off: Unblank enables the display,
// all the suspend and powerdown modes disable it. Modes the subsystem may
// grow in the future are accepted and ignored. Each recognized call is a
// single enable-register write, so repeating a mode is harmless.
func (d *Dev) SetPowerState(mode fbreg.BlankMode) error {
	if d.state == Released {
		return ErrReleased
	}
	switch mode {
	case fbreg.Unblank:
		d.regs.Write32(regEnable, 1)
		d.state = Active
	case fbreg.Normal, fbreg.VSyncSuspend, fbreg.HSyncSuspend, fbreg.PowerDown:
		d.regs.Write32(regEnable, 0)
		d.state = Blanked
	}
	return nil
}
