// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gotee

import (
	"errors"
	"log"
	"sync"

	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
	"github.com/usbarmory/tamago/soc/nxp/imx6ul"

	"github.com/usbarmory/armory-boot/disk"

	"github.com/usbarmory/GoTEE-fatal/fatal"
	"github.com/usbarmory/GoTEE-fatal/iram"
	"github.com/usbarmory/GoTEE-fatal/util"
)

var errPrivileged = errors.New("operation reserved to the fatal applet")

// RPC represents the receiver for applet <--> monitor RPC over system calls,
// privileged operations are served only when a crash report is attached.
type RPC struct {
	Report *fatal.Report
}

// Echo returns a response with the input string.
func (r *RPC) Echo(in string, out *string) error {
	*out = in
	return nil
}

// LED receives a LED state request.
func (r *RPC) LED(led util.LEDStatus, _ *bool) error {
	switch led.Name {
	case "white", "White", "WHITE":
		return errors.New("LED is secure only")
	case "blue", "Blue", "BLUE":
		return usbarmory.LED(led.Name, led.On)
	default:
		return errors.New("invalid LED")
	}
}

// CrashReport returns the crash context to report.
func (r *RPC) CrashReport(_ bool, report *fatal.Report) error {
	if r.Report == nil {
		return errPrivileged
	}

	*report = *r.Report

	return nil
}

// SecureMonitorCall serves the IRAM copy monitor call.
func (r *RPC) SecureMonitorCall(args iram.Args, _ *bool) (err error) {
	if r.Report == nil {
		return errPrivileged
	}

	if err = secureMonitorCall(&args); err != nil {
		log.Printf("SM rejected monitor call op:%#x page:%#x addr:%#x size:%#x dir:%d, %v",
			args.Op, args.Page, args.Addr, args.Size, args.Direction, err)
	}

	return
}

// SetConfig sets a persistent configuration item.
func (r *RPC) SetConfig(item util.ConfigItem, _ *bool) error {
	if r.Report == nil {
		return errPrivileged
	}

	log.Printf("SM setting configuration item %d to %#x", item.Item, item.Value)

	return Config.SetConfig(item.Item, item.Value)
}

// RebootSystem resets the SoC.
func (r *RPC) RebootSystem(_ bool, _ *bool) error {
	if r.Report == nil {
		return errPrivileged
	}

	return Reboot()
}

// Backlight controls the display backlight, represented by the secure white
// LED.
func (r *RPC) Backlight(on bool, _ *bool) error {
	if r.Report == nil {
		return errPrivileged
	}

	return usbarmory.LED("white", on)
}

// PowerReady reports whether the power status is known, the board is bus
// powered and reports it once the monitor is running.
func (r *RPC) PowerReady(_ bool, ready *bool) error {
	*ready = true
	return nil
}

// ReadFile returns a file from the boot media.
func (r *RPC) ReadFile(path string, buf *[]byte) (err error) {
	if r.Report == nil {
		return errPrivileged
	}

	*buf, err = readFile(path)

	return
}

var bootMedia struct {
	sync.Once

	part interface {
		ReadAll(path string) ([]byte, error)
	}
	err error
}

func readFile(path string) ([]byte, error) {
	if !imx6ul.Native {
		return nil, errors.New("boot media unavailable under emulation")
	}

	bootMedia.Do(func() {
		// Set the uSD controller as Secure master to grant access to
		// the Secure Monitor DMA region.
		if bootMedia.err = imx6ul.CSU.SetAccess(10, true, false); bootMedia.err != nil {
			return
		}

		bootMedia.part, bootMedia.err = disk.Detect(usbarmory.SD, "")
	})

	if bootMedia.err != nil {
		return nil, bootMedia.err
	}

	return bootMedia.part.ReadAll(path)
}
