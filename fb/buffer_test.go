// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fb

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

var _ draw.Image = &Buffer{}

func TestColor565RoundTrip(t *testing.T) {
	for _, c := range []Color565{White, Black, 0x641f, 0xf800, 0x07e0, 0x001f, 0x1234} {
		if got := To565(color.RGBAModel.Convert(c)); got != c {
			t.Errorf("To565(%#04x) = %#04x", uint16(c), uint16(got))
		}
	}
}

func TestColor565FromRGBA(t *testing.T) {
	tests := []struct {
		in   color.Color
		want Color565
	}{
		{color.White, White},
		{color.Black, Black},
		{color.RGBA{R: 0xff, A: 0xff}, 0xf800},
		{color.RGBA{G: 0xff, A: 0xff}, 0x07e0},
		{color.RGBA{B: 0xff, A: 0xff}, 0x001f},
	}

	for _, tt := range tests {
		if got := To565(tt.in); got != tt.want {
			t.Errorf("To565(%v) = %#04x, want %#04x", tt.in, uint16(got), uint16(tt.want))
		}
	}
}

func TestBufferSetClips(t *testing.T) {
	b := NewBuffer()

	b.Set565(-1, 0, White)
	b.Set565(0, -1, White)
	b.Set565(Width, 0, White)
	b.Set565(0, Height, White)

	for i, p := range b.Pix {
		if p != 0 {
			t.Fatalf("out of bounds write landed at element %d", i)
		}
	}
}

func TestBufferSetAt(t *testing.T) {
	b := NewBuffer()

	b.Set(31, 0, color.White)

	if b.Pix[151] != uint16(White) {
		t.Errorf("Set(31, 0) did not write element 151")
	}

	if got := b.At565(31, 0); got != White {
		t.Errorf("At565(31, 0) = %#04x", uint16(got))
	}
}

func TestBufferDraw(t *testing.T) {
	b := NewBuffer()
	b.Fill(Black)

	r := image.Rect(100, 200, 140, 216)
	draw.Draw(b, r, image.NewUniform(color.White), image.Point{}, draw.Src)

	img := b.Linear()

	for y := 190; y < 230; y++ {
		for x := 90; x < 150; x++ {
			want := color.RGBA{A: 0xff}

			if (image.Point{x, y}).In(r) {
				want = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
			}

			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}
