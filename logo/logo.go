// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package logo provides the RGB565 bitmap shown in the corner of the fatal
// screen.
package logo

import (
	"image"
	"sync"

	"github.com/fogleman/gg"

	"github.com/usbarmory/GoTEE-fatal/fb"
	"github.com/usbarmory/GoTEE-fatal/text"
)

const (
	// Width is the logo width in pixels.
	Width = 256
	// Height is the logo height in pixels.
	Height = 128
)

const (
	background = "#14161e"
	accent     = "#3b8dff"
	label      = "GoTEE"
)

var (
	once   sync.Once
	pixels []fb.Color565
)

func render() image.Image {
	dc := gg.NewContext(Width, Height)

	dc.SetHexColor(background)
	dc.Clear()

	cx := float64(Height) / 2
	cy := float64(Height) / 2

	// planet and orbit, kept clear of the corners so that pixel 0 stays
	// background
	dc.SetHexColor(accent)
	dc.DrawCircle(cx, cy, 34)
	dc.Fill()

	dc.SetLineWidth(4)
	dc.DrawEllipse(cx, cy, 54, 18)
	dc.Stroke()

	dc.SetHexColor(background)
	dc.DrawCircle(cx, cy, 22)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(text.Mono(32))
	dc.DrawStringAnchored(label, cx+68, cy, 0, 0.35)

	return dc.Image()
}

// Pixels returns the row-major logo bitmap, Width*Height elements.
func Pixels() []fb.Color565 {
	once.Do(func() {
		img := render()
		pixels = make([]fb.Color565, Width*Height)

		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				pixels[y*Width+x] = fb.To565(img.At(x, y))
			}
		}
	})

	return pixels
}

// Background returns the logo backdrop color, used to fill the whole screen.
func Background() fb.Color565 {
	return Pixels()[0]
}
