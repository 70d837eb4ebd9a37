// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reboot

import (
	"fmt"

	"github.com/usbarmory/GoTEE-fatal/iram"
)

// FillByte is the filler pattern for unused IRAM window bytes.
const FillByte = 0xff

// FileReader is the interface to the boot media filesystem.
type FileReader interface {
	ReadAll(path string) ([]byte, error)
}

// Payload represents an alternate boot image sized to the IRAM window.
type Payload struct {
	// Buf holds the image followed by FillByte up to the window size.
	Buf []byte
	// Size is the image size.
	Size int
	// Loaded reports whether the image was read successfully.
	Loaded bool
}

// NewPayload returns an empty payload buffer.
func NewPayload() *Payload {
	p := &Payload{}
	p.reset()

	return p
}

func (p *Payload) reset() {
	if len(p.Buf) != iram.WindowSize {
		p.Buf = make([]byte, iram.WindowSize)
	}

	for i := range p.Buf {
		p.Buf[i] = FillByte
	}

	p.Size = 0
	p.Loaded = false
}

// Load reads the payload image, data exceeding the window capacity is
// ignored. The buffer is reset to the window size and filler before
// reading.
func (p *Payload) Load(files FileReader, path string) (err error) {
	p.reset()

	buf, err := files.ReadAll(path)

	if err != nil {
		return fmt.Errorf("could not load payload %s, %v", path, err)
	}

	if len(buf) > len(p.Buf) {
		buf = buf[:len(p.Buf)]
	}

	p.Size = copy(p.Buf, buf)
	p.Loaded = true

	return
}
