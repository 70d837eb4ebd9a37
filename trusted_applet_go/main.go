// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"log"
	"os"
	"runtime"
	"runtime/goos"
	"time"
	_ "unsafe"

	"github.com/usbarmory/GoTEE/applet"
	"github.com/usbarmory/GoTEE/syscall"

	"github.com/usbarmory/GoTEE-fatal/mem"
	"github.com/usbarmory/GoTEE-fatal/util"
)

//go:linkname ramStart runtime/goos.RamStart
var ramStart uint32 = mem.AppletStart

//go:linkname ramSize runtime/goos.RamSize
var ramSize uint32 = mem.AppletSize

//go:linkname ramStackOffset runtime/goos.RamStackOffset
var ramStackOffset uint32 = 0x100

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)

	// yield to monitor (w/ err != nil) on runtime panic
	goos.Exit = applet.Crash
}

func testRPC() {
	res := ""
	req := "hello"

	log.Printf("applet requests echo via RPC: %s", req)

	if err := syscall.Call("RPC.Echo", req, &res); err != nil {
		log.Printf("applet received RPC error: %v", err)
	} else {
		log.Printf("applet received echo via RPC: %s", res)
	}

	// privileged operations are not available to this applet
	if err := syscall.Call("RPC.Backlight", true, nil); err != nil {
		log.Printf("applet backlight request denied: %v", err)
	}
}

func main() {
	log.Printf("%s/%s (%s) • TEE workload applet", runtime.GOOS, runtime.GOARCH, runtime.Version())

	testRPC()

	ledStatus := util.LEDStatus{
		Name: "blue",
		On:   false,
	}

	for i := 0; i < 3; i++ {
		syscall.Call("RPC.LED", ledStatus, nil)
		ledStatus.On = !ledStatus.On

		time.Sleep(500 * time.Millisecond)
		log.Printf("applet says %d mississippi", i+1)
	}

	// crash with a data abort, to be reported on the fatal screen
	mem.TestDataAbort("applet")

	// this should be unreachable
	applet.Exit()
}
