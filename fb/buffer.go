// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fb

import (
	"image"
	"image/color"
)

// Color565 represents an RGB565 pixel value.
type Color565 uint16

// Common colors.
const (
	White Color565 = 0xffff
	Black Color565 = 0x0000
)

// RGBA implements color.Color.
func (c Color565) RGBA() (r, g, b, a uint32) {
	r = uint32(c>>11) & 0x1f
	g = uint32(c>>5) & 0x3f
	b = uint32(c) & 0x1f

	// expand to 8 bits replicating the most significant bits, then to 16
	r = (r<<3 | r>>2) * 0x101
	g = (g<<2 | g>>4) * 0x101
	b = (b<<3 | b>>2) * 0x101

	return r, g, b, 0xffff
}

// RGB565Model converts arbitrary colors to Color565, alpha is ignored.
var RGB565Model = color.ModelFunc(func(c color.Color) color.Color {
	if c, ok := c.(Color565); ok {
		return c
	}

	r, g, b, _ := c.RGBA()

	return Color565((r>>11)<<11 | (g>>10)<<5 | b>>11)
})

// To565 converts c to an RGB565 value.
func To565(c color.Color) Color565 {
	return RGB565Model.Convert(c).(Color565)
}

// Buffer represents one tiled framebuffer page.
//
// Buffer implements draw.Image, text and shapes drawn through it land on the
// correct texel of the block-linear layout.
type Buffer struct {
	// Pix holds the tiled pixel data, it must be at least Size elements
	// long.
	Pix []uint16
}

// NewBuffer allocates a framebuffer page.
func NewBuffer() *Buffer {
	return &Buffer{
		Pix: make([]uint16, Size),
	}
}

// Fill sets every element of the page, including stride and block padding.
func (b *Buffer) Fill(c Color565) {
	for i := range b.Pix {
		b.Pix[i] = uint16(c)
	}
}

// Set565 writes a pixel, coordinates outside the logical screen are ignored.
func (b *Buffer) Set565(x, y int, c Color565) {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return
	}

	b.Pix[PixelOffset(uint32(x), uint32(y))] = uint16(c)
}

// At565 reads a pixel, coordinates outside the logical screen read as black.
func (b *Buffer) At565(x, y int) Color565 {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return Black
	}

	return Color565(b.Pix[PixelOffset(uint32(x), uint32(y))])
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return RGB565Model
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	return b.At565(x, y)
}

// Set implements draw.Image.
func (b *Buffer) Set(x, y int, c color.Color) {
	b.Set565(x, y, To565(c))
}

// Linear returns a row-major copy of the logical screen area.
func (b *Buffer) Linear() *image.RGBA {
	img := image.NewRGBA(b.Bounds())

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			img.Set(x, y, b.At565(x, y))
		}
	}

	return img
}
