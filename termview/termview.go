// Copyright 2024 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview renders a registered framebuffer screen in the terminal
// using ANSI color codes.
//
// It downsamples the screen to a grid of colored blocks on stdout. Useful
// for eyeballing what the panel shows over an SSH session, or for poking at
// the driver before the panel is wired up.
package termview

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/craigjb/gslinux/fbreg"
	"github.com/craigjb/gslinux/gslcd/rgb24"
)

// Opts represents the options available for the view.
type Opts struct {
	// Columns is the width of the rendering in terminal cells. Defaults to
	// 80.
	Columns int
	// Palette is the ANSI palette to quantize with. Defaults to
	// ansi256.Default.
	Palette *ansi256.Palette

	_ struct{}
}

// View renders one screen to the terminal.
type View struct {
	w       io.Writer
	screen  *fbreg.Screen
	cols    int
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a View of s writing to stdout.
func New(s *fbreg.Screen, opts *Opts) *View {
	cols := opts.Columns
	if cols == 0 {
		cols = 80
	}
	if cols > s.Width {
		cols = s.Width
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &View{
		w:       colorable.NewColorableStdout(),
		screen:  s,
		cols:    cols,
		palette: *p,
	}
}

func (v *View) String() string {
	return fmt.Sprintf("termview.View{%s}", v.screen.Name)
}

// Render samples the screen's visible area and writes one frame of colored
// blocks. Terminal cells are roughly twice as tall as wide, so vertical
// sampling is halved to keep the aspect.
func (v *View) Render() error {
	img := rgb24.Wrap(v.screen.Mem, v.screen.Stride, v.screen.Bounds())
	step := v.screen.Width / v.cols
	if step == 0 {
		step = 1
	}
	v.buf.Reset()
	for y := step / 2; y < v.screen.Height; y += 2 * step {
		for x := step / 2; x < v.screen.Width; x += step {
			c := img.RGBAt(x, y)
			_, _ = io.WriteString(&v.buf, v.palette.Block(color.NRGBA{c.R, c.G, c.B, 255}))
		}
		_, _ = v.buf.WriteString("\033[0m\n")
	}
	_, err := v.buf.WriteTo(v.w)
	return err
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes.
func (v *View) Halt() error {
	_, err := v.w.Write([]byte("\033[0m"))
	return err
}
