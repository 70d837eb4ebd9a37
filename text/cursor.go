// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package text implements a positioned text cursor which rasterizes glyphs
// into any draw.Image, including the tiled fatal screen framebuffer.
package text

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/usbarmory/GoTEE-fatal/fb"
)

// DefaultSize is the font size (in points) of a new Cursor.
const DefaultSize = 16

// FaceFunc returns a font face for the requested size in points.
type FaceFunc func(size float64) font.Face

// Cursor represents a text drawing position with its current font size and
// color.
//
// The position is the top left corner of the current line, printing advances
// it horizontally while newlines return it to the line start (set by the
// last SetPosition) one line height below.
type Cursor struct {
	dst   draw.Image
	faces FaceFunc

	x     int
	y     int
	lineX int

	size  float64
	face  font.Face
	color fb.Color565
}

// NewCursor returns a white cursor at the origin of dst, rasterizing with
// faces from the argument function (Mono when nil).
func NewCursor(dst draw.Image, faces FaceFunc) *Cursor {
	if faces == nil {
		faces = Mono
	}

	c := &Cursor{
		dst:   dst,
		faces: faces,
		color: fb.White,
	}

	c.SetFontSize(DefaultSize)

	return c
}

// SetPosition moves the cursor and sets the line start for newlines.
func (c *Cursor) SetPosition(x, y int) {
	c.x = x
	c.y = y
	c.lineX = x
}

// X returns the current horizontal position.
func (c *Cursor) X() int {
	return c.x
}

// Y returns the current vertical position.
func (c *Cursor) Y() int {
	return c.y
}

// SetFontSize selects the face used by subsequent prints.
func (c *Cursor) SetFontSize(size float64) {
	c.size = size
	c.face = c.faces(size)
}

// FontSize returns the current font size.
func (c *Cursor) FontSize() float64 {
	return c.size
}

// SetColor sets the text color.
func (c *Cursor) SetColor(color fb.Color565) {
	c.color = color
}

// LineHeight returns the line height of the current face in pixels.
func (c *Cursor) LineHeight() int {
	return c.face.Metrics().Height.Ceil()
}

// AddSpacingLines moves the cursor down by a multiple of the line height and
// back to the line start.
func (c *Cursor) AddSpacingLines(n float64) {
	c.x = c.lineX
	c.y += int(float64(c.LineHeight()) * n)
}

// Print draws a string, honoring embedded newlines.
func (c *Cursor) Print(s string) {
	lines := strings.Split(s, "\n")

	for i, line := range lines {
		if i > 0 {
			c.newline()
		}

		c.draw(line)
	}
}

// PrintLine draws a string followed by a newline.
func (c *Cursor) PrintLine(s string) {
	c.Print(s)
	c.newline()
}

// Printf draws a formatted string.
func (c *Cursor) Printf(format string, a ...interface{}) {
	c.Print(fmt.Sprintf(format, a...))
}

// PrintfLine draws a formatted string followed by a newline.
func (c *Cursor) PrintfLine(format string, a ...interface{}) {
	c.PrintLine(fmt.Sprintf(format, a...))
}

func (c *Cursor) newline() {
	c.AddSpacingLines(1)
}

func (c *Cursor) draw(s string) {
	if len(s) == 0 {
		return
	}

	d := &font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(c.color),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(c.x), Y: fixed.I(c.y) + c.face.Metrics().Ascent},
	}

	d.DrawString(s)
	c.x = d.Dot.X.Round()
}
