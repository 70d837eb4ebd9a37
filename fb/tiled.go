// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package fb implements addressing of the fatal screen framebuffer, a single
// RGB565 page stored in block-linear (tiled) layout.
package fb

const (
	// Width is the logical screen width in pixels.
	Width = 1280
	// Height is the logical screen height in pixels.
	Height = 720
	// Bpp is the number of bytes per pixel (RGB565).
	Bpp = 2

	// WidthAlignedBytes is the row stride in bytes, rounded up to a 64
	// byte boundary.
	WidthAlignedBytes = (Width*Bpp + 63) &^ 63
	// WidthAligned is the row stride in pixels.
	WidthAligned = WidthAlignedBytes / Bpp

	// HeightAligned is the page height in rows, rounded up to the 128
	// row block height of the tiling.
	HeightAligned = (Height + 127) &^ 127

	// Size is the number of pixels in one framebuffer page.
	Size = WidthAligned * HeightAligned

	// tilesPerRow is the number of 512 byte GOBs spanned by one row of
	// 128 pixel tall blocks.
	tilesPerRow = (WidthAligned / 2) / 16 * 8
	tileBytes   = 16 * 16 * 4
)

// PixelOffset returns the element index of pixel (x, y) within a tiled
// framebuffer page.
//
// The coordinates must lie within the logical screen bounds, callers are
// responsible for clipping.
func PixelOffset(x, y uint32) uint32 {
	pos := ((y & 127) >> 4) + (x>>5)*8 + (y>>7)*tilesPerRow
	pos *= tileBytes

	pos += ((y%16)/8)*512 + ((x%32)/16)*256 + ((y%8)/2)*64 + ((x%16)/8)*32 + (y%2)*16 + (x%8)*2

	return pos / Bpp
}
