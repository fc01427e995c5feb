// Copyright 2023 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb24 implements a packed 24 bits-per-pixel truecolor image.
//
// Each pixel is the 24-bit word red<<16 | green<<8 | blue stored
// little-endian, so the in-memory byte order is blue, green, red with no
// padding. This is the native framebuffer format of the Gameslab LCD
// controller; Wrap lets the driver expose its mapped framebuffer directly
// as a draw.Image.
package rgb24

import (
	"image"
	"image/color"
	"image/draw"
)

// BytesPerPixel is the framebuffer pixel pitch.
const BytesPerPixel = 3

// RGB is an opaque 24-bit color.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Packed returns the pixel as the device's 24-bit word.
func (c RGB) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Model is the color model for RGB.
var Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if c, ok := c.(RGB); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

// Image is a packed 24bpp image backed by an arbitrary byte slice.
type Image struct {
	// Pix holds the pixels in B, G, R byte order.
	Pix []byte
	// Stride is the distance in bytes between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

var _ draw.Image = &Image{}

// New returns an initialized (black) Image with its own backing store.
func New(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]byte, r.Dx()*r.Dy()*BytesPerPixel),
		Stride: r.Dx() * BytesPerPixel,
		Rect:   r,
	}
}

// Wrap returns an Image over caller-owned pixel memory, typically a mapped
// framebuffer. stride may exceed r.Dx()*BytesPerPixel when the buffer is
// wider than the visible area.
func Wrap(pix []byte, stride int, r image.Rectangle) *Image {
	return &Image{Pix: pix, Stride: stride, Rect: r}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGBAt(x, y)
}

// RGBAt is the concrete version of At.
func (i *Image) RGBAt(x, y int) RGB {
	if !(image.Point{x, y}.In(i.Rect)) {
		return RGB{}
	}
	o := i.PixOffset(x, y)
	return RGB{R: i.Pix[o+2], G: i.Pix[o+1], B: i.Pix[o]}
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB(x, y, convert(c).(RGB))
}

// SetRGB is the concrete version of Set.
func (i *Image) SetRGB(x, y int, c RGB) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	o := i.PixOffset(x, y)
	i.Pix[o] = c.B
	i.Pix[o+1] = c.G
	i.Pix[o+2] = c.R
}

// PixOffset returns the index into Pix of the first byte of the pixel at
// (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*BytesPerPixel
}

// SubImage returns an image representing the portion of the image visible
// through r. The returned value shares pixels with the original image.
func (i *Image) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(i.Rect)
	if r.Empty() {
		return &Image{}
	}
	return &Image{
		Pix:    i.Pix[i.PixOffset(r.Min.X, r.Min.Y):],
		Stride: i.Stride,
		Rect:   r,
	}
}
