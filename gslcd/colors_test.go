// Copyright 2024 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gslcd

import (
	"errors"
	"testing"

	"github.com/craigjb/gslinux/mmio/mmiotest"
)

func newTestDev(t *testing.T, name string) (*Dev, *mmiotest.Arena) {
	t.Helper()
	a := &mmiotest.Arena{}
	opts := Opts{Name: name, Width: 8, Height: 4}
	d, err := New(a, Resources{RegsPhys: testRegs}, &opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Halt() })
	return d, a
}

func TestSetColor(t *testing.T) {
	for _, tc := range []struct {
		name                 string
		index                uint32
		red, green, blue, tr uint32
		grayscale            bool
		want                 uint32
	}{
		{
			name: "black",
			want: 0x000000,
		},
		{
			name:  "packing",
			index: 1,
			red:   0xAB00, green: 0xCD00, blue: 0xEF00,
			tr:   0x5555,
			want: 0xABCDEF,
		},
		{
			name:  "white",
			index: 15,
			red:   0xFFFF, green: 0xFFFF, blue: 0xFFFF,
			want: 0xFFFFFF,
		},
		{
			name:      "grayscale red",
			red:       0xFF00,
			grayscale: true,
			want:      0x4D4D4D,
		},
		{
			name: "grayscale white",
			red:  0xFF00, green: 0xFF00, blue: 0xFF00,
			grayscale: true,
			want:      0xFFFFFF,
		},
		{
			name:      "grayscale ignores transparency",
			index:     2,
			red:       0xFF00,
			tr:        0xFFFF,
			grayscale: true,
			want:      0x4D4D4D,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, a := newTestDev(t, "color-"+tc.name)
			writes := len(a.Filter(mmiotest.Write32))

			if err := d.SetColor(tc.index, tc.red, tc.green, tc.blue, tc.tr, tc.grayscale); err != nil {
				t.Fatalf("SetColor() failed: %v", err)
			}
			got, err := d.Palette(tc.index)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("palette[%d] = %#06x, want %#06x", tc.index, got, tc.want)
			}
			// A color map update never touches the hardware.
			if n := len(a.Filter(mmiotest.Write32)); n != writes {
				t.Errorf("SetColor() performed %d register writes", n-writes)
			}
		})
	}
}

func TestSetColor_outOfRange(t *testing.T) {
	d, _ := newTestDev(t, "color-range")
	for _, index := range []uint32{16, 17, 255, 1 << 20, 1<<31 + 1, 0xFFFFFFFF} {
		if err := d.SetColor(index, 0, 0, 0, 0, false); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetColor(%d) = %v, want %v", index, err, ErrOutOfRange)
		}
		if _, err := d.Palette(index); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Palette(%d) = %v, want %v", index, err, ErrOutOfRange)
		}
	}
	// The boundary entry is still writable.
	if err := d.SetColor(15, 0x0100, 0x0200, 0x0300, 0, false); err != nil {
		t.Errorf("SetColor(15) failed: %v", err)
	}
	if got, _ := d.Palette(15); got != 0x010203 {
		t.Errorf("palette[15] = %#06x, want 0x010203", got)
	}
}

func TestSetColor_released(t *testing.T) {
	d, _ := newTestDev(t, "color-released")
	d.Halt()
	if err := d.SetColor(0, 0, 0, 0, 0, false); !errors.Is(err, ErrReleased) {
		t.Errorf("SetColor() after Halt = %v, want %v", err, ErrReleased)
	}
	// Range checking still applies to a released device.
	if err := d.SetColor(16, 0, 0, 0, 0, false); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetColor(16) after Halt = %v, want %v", err, ErrOutOfRange)
	}
}
