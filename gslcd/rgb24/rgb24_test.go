// Copyright 2023 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb24

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestRGB(t *testing.T) {
	c := RGB{R: 0xAB, G: 0xCD, B: 0xEF}
	r, g, b, a := c.RGBA()
	if r != 0xABAB || g != 0xCDCD || b != 0xEFEF || a != 0xFFFF {
		t.Errorf("RGBA() = %#x %#x %#x %#x", r, g, b, a)
	}
	if got := c.Packed(); got != 0xABCDEF {
		t.Errorf("Packed() = %#06x, want 0xABCDEF", got)
	}
}

func TestModel(t *testing.T) {
	got := Model.Convert(color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xFF})
	if got != (RGB{R: 0x12, G: 0x34, B: 0x56}) {
		t.Errorf("Convert() = %v", got)
	}
	// Converting an RGB is the identity.
	if got := Model.Convert(RGB{1, 2, 3}); got != (RGB{1, 2, 3}) {
		t.Errorf("Convert(RGB) = %v", got)
	}
}

func TestImage_setAt(t *testing.T) {
	img := New(image.Rect(0, 0, 4, 2))
	img.SetRGB(2, 1, RGB{R: 0xAB, G: 0xCD, B: 0xEF})
	if got := img.RGBAt(2, 1); got != (RGB{0xAB, 0xCD, 0xEF}) {
		t.Errorf("RGBAt(2, 1) = %v", got)
	}
	// Byte order in memory is blue, green, red.
	o := img.PixOffset(2, 1)
	if img.Pix[o] != 0xEF || img.Pix[o+1] != 0xCD || img.Pix[o+2] != 0xAB {
		t.Errorf("pixel bytes = % x, want ef cd ab", img.Pix[o:o+3])
	}
	// Out of bounds accesses are ignored.
	img.SetRGB(4, 0, RGB{1, 1, 1})
	if got := img.RGBAt(4, 0); got != (RGB{}) {
		t.Errorf("RGBAt(4, 0) = %v, want zero", got)
	}
}

func TestImage_wrapStride(t *testing.T) {
	// A 2x2 visible window in a 4-pixel-wide buffer.
	pix := make([]byte, 4*2*BytesPerPixel)
	img := Wrap(pix, 4*BytesPerPixel, image.Rect(0, 0, 2, 2))
	img.SetRGB(1, 1, RGB{R: 1, G: 2, B: 3})
	o := 1*4*BytesPerPixel + 1*BytesPerPixel
	if pix[o] != 3 || pix[o+1] != 2 || pix[o+2] != 1 {
		t.Errorf("pixel bytes = % x, want 03 02 01", pix[o:o+3])
	}
}

func TestImage_drawInterop(t *testing.T) {
	img := New(image.Rect(0, 0, 4, 4))
	src := image.NewUniform(color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF})
	draw.Draw(img, image.Rect(1, 1, 3, 3), src, image.Point{}, draw.Src)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := RGB{}
			if x >= 1 && x < 3 && y >= 1 && y < 3 {
				want = RGB{R: 0x10, G: 0x20, B: 0x30}
			}
			if got := img.RGBAt(x, y); got != want {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestImage_subImage(t *testing.T) {
	img := New(image.Rect(0, 0, 4, 4))
	img.SetRGB(2, 2, RGB{R: 9})
	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*Image)
	if got := sub.Bounds(); got != image.Rect(2, 2, 4, 4) {
		t.Fatalf("Bounds() = %v", got)
	}
	if got := sub.RGBAt(2, 2); got != (RGB{R: 9}) {
		t.Errorf("RGBAt(2, 2) = %v", got)
	}
	// Pixels are shared with the parent.
	sub.SetRGB(3, 3, RGB{B: 7})
	if got := img.RGBAt(3, 3); got != (RGB{B: 7}) {
		t.Errorf("parent pixel (3, 3) = %v", got)
	}
	if got := img.SubImage(image.Rect(10, 10, 12, 12)).Bounds(); !got.Empty() {
		t.Errorf("disjoint SubImage bounds = %v, want empty", got)
	}
}
