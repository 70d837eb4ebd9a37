// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package text

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var (
	monoOnce  sync.Once
	monoFont  *truetype.Font
	monoMutex sync.Mutex
	monoFaces = make(map[float64]font.Face)
)

// Mono returns a Go Mono face of the given size, rasterized at 72 DPI so that
// points equal pixels. Faces are cached per size.
func Mono(size float64) font.Face {
	monoOnce.Do(func() {
		var err error

		// the embedded TTF is known to parse
		if monoFont, err = truetype.Parse(gomono.TTF); err != nil {
			panic(err)
		}
	})

	monoMutex.Lock()
	defer monoMutex.Unlock()

	if face, ok := monoFaces[size]; ok {
		return face
	}

	face := truetype.NewFace(monoFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	monoFaces[size] = face

	return face
}
