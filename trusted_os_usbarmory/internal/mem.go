// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gotee

import (
	"errors"
	"log"

	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/GoTEE-fatal/iram"
	"github.com/usbarmory/GoTEE-fatal/mem"
	"github.com/usbarmory/GoTEE-fatal/reboot"
)

var (
	// Window is the IRAM window backing memory.
	Window *iram.Window
	// Config is the persistent configuration page.
	Config *reboot.ConfigPage
)

// reserve returns a slice over a fixed memory range, kept reserved for the
// monitor lifetime.
func reserve(start uint, size int) []byte {
	r, err := dma.NewRegion(start, size, false)

	if err != nil {
		log.Fatalf("SM could not reserve %#x-%#x, %v", start, start+uint(size), err)
	}

	_, buf := r.Reserve(size, 0)

	return buf
}

// Init reserves applet memory, the IRAM window backing memory and the
// persistent configuration page.
func Init() {
	mem.Init()

	Window = &iram.Window{
		Mem: reserve(mem.IramStart, mem.IramSize)[:iram.WindowSize],
	}

	Config = &reboot.ConfigPage{
		Mem: reserve(mem.ConfigStart, mem.ConfigSize),
	}
}

// MemCopy reads, or writes when w is not empty, physical memory.
func MemCopy(start uint, size int, w []byte) (b []byte) {
	r, err := dma.NewRegion(start, size, true)

	if err != nil {
		panic("could not allocate memory copy DMA")
	}

	start, buf := r.Reserve(size, 0)
	defer r.Release(start)

	if len(w) > 0 {
		copy(buf, w)
	} else {
		b = make([]byte, size)
		copy(b, buf)
	}

	return
}

// secureMonitorCall serves the IRAM copy monitor call, the staging page must
// lie within the fatal applet memory.
func secureMonitorCall(args *iram.Args) (err error) {
	if args.Page%iram.PageSize != 0 || !mem.WithinFatalApplet(args.Page, iram.PageSize) {
		return errors.New("invalid staging page")
	}

	if err = iram.Validate(args); err != nil || args.Size == 0 {
		return
	}

	switch args.Direction {
	case iram.Write:
		page := MemCopy(args.Page, int(args.Size), nil)
		err = Window.Serve(args, page)
	case iram.Read:
		page := make([]byte, args.Size)

		if err = Window.Serve(args, page); err == nil {
			MemCopy(args.Page, len(page), page)
		}
	}

	return
}
