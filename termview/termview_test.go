// Copyright 2024 The Gameslab Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/craigjb/gslinux/fbreg"
)

func TestNew(t *testing.T) {
	s := &fbreg.Screen{Name: "view0", Width: 32, Height: 16, Stride: 32 * 3, Mem: make([]byte, 32*16*3)}
	v := New(s, &Opts{})
	if got := v.cols; got != 32 {
		t.Errorf("columns = %d, want clamped to screen width 32", got)
	}
	if got, want := v.String(), "termview.View{view0}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRender(t *testing.T) {
	s := &fbreg.Screen{Name: "view1", Width: 8, Height: 4, Stride: 8 * 3, Mem: make([]byte, 8*4*3)}
	v := New(s, &Opts{Columns: 4})
	var out bytes.Buffer
	v.w = &out
	if err := v.Render(); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	// 8x4 at 4 columns: step 2, rows sampled every 4 pixels.
	if got := strings.Count(out.String(), "\n"); got != 1 {
		t.Errorf("Render() wrote %d rows, want 1", got)
	}
}
