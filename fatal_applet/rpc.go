// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"log"
	"time"

	"github.com/usbarmory/GoTEE/syscall"

	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/GoTEE-fatal/iram"
	"github.com/usbarmory/GoTEE-fatal/mem"
	"github.com/usbarmory/GoTEE-fatal/util"
)

// monitor issues IRAM copy monitor calls.
type monitor struct{}

func (monitor) SecureMonitorCall(args *iram.Args) error {
	return syscall.Call("RPC.SecureMonitorCall", *args, nil)
}

// splConfig sets persistent configuration items.
type splConfig struct{}

func (splConfig) SetConfig(item uint32, value uint64) error {
	return syscall.Call("RPC.SetConfig", util.ConfigItem{Item: item, Value: value}, nil)
}

// power requests system reboots.
type power struct{}

func (power) RebootSystem() error {
	return syscall.Call("RPC.RebootSystem", true, nil)
}

// backlight switches the display backlight.
type backlight struct{}

func (backlight) On() error {
	return syscall.Call("RPC.Backlight", true, nil)
}

// bootMedia reads files from the monitor boot media.
type bootMedia struct{}

func (bootMedia) ReadAll(path string) (buf []byte, err error) {
	err = syscall.Call("RPC.ReadFile", path, &buf)
	return
}

// powerReady returns a channel closed once the monitor reports the power
// status.
func powerReady(interval time.Duration) <-chan struct{} {
	ready := make(chan struct{})

	go func() {
		var ok bool

		for {
			if err := syscall.Call("RPC.PowerReady", true, &ok); err != nil {
				log.Printf("fatal: power status error, %v", err)
			}

			if ok {
				close(ready)
				return
			}

			time.Sleep(interval)
		}
	}()

	return ready
}

// workPage returns the IRAM staging page.
func workPage() *iram.Page {
	r, err := dma.NewRegion(mem.WorkPage, iram.PageSize, false)

	if err != nil {
		log.Fatalf("fatal: could not map work page, %v", err)
	}

	addr, buf := r.Reserve(iram.PageSize, 0)

	return &iram.Page{
		Addr: addr,
		Buf:  buf,
	}
}
