// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"log"
	"os"
	"runtime"
	"runtime/goos"
	"time"

	"github.com/usbarmory/GoTEE/applet"
	"github.com/usbarmory/GoTEE/syscall"

	"github.com/usbarmory/GoTEE-fatal/display"
	"github.com/usbarmory/GoTEE-fatal/display/soft"
	"github.com/usbarmory/GoTEE-fatal/fatal"
	"github.com/usbarmory/GoTEE-fatal/iram"
	"github.com/usbarmory/GoTEE-fatal/reboot"
)

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)

	// yield to monitor (w/ err != nil) on runtime panic
	goos.Exit = applet.Crash
}

func main() {
	log.Printf("%s/%s (%s) • TEE fatal screen applet", runtime.GOOS, runtime.GOARCH, runtime.Version())

	var report fatal.Report

	if err := syscall.Call("RPC.CrashReport", true, &report); err != nil {
		log.Fatalf("fatal: could not obtain crash report, %v", err)
	}

	ctx, err := report.Context()

	if err != nil {
		log.Fatalf("fatal: invalid crash report, %v", err)
	}

	files := bootMedia{}

	conf, err := fatal.LoadConfig(files, fatal.DefaultConfigPath)

	if err != nil {
		log.Printf("fatal: using default configuration, %v", err)
		conf.FirmwareVersion = fmt.Sprintf("%s/%s (%s)", runtime.GOOS, runtime.GOARCH, runtime.Version())
	}

	payload := reboot.NewPayload()

	if err = payload.Load(files, conf.PayloadPath); err != nil {
		log.Printf("fatal: %v", err)
	}

	o := &reboot.Orchestrator{
		Bridge: &iram.Bridge{
			Monitor: monitor{},
			Page:    workPage(),
		},
		Config:  splConfig{},
		Power:   power{},
		Payload: payload,
	}

	log.Printf("fatal: %s reboot selected", o.Mode())

	compositor := soft.New()
	compositor.OnPresent = func(screen *image.RGBA) {
		log.Printf("fatal: screen presented (%dx%d)", screen.Rect.Dx(), screen.Rect.Dy())
	}

	go fatal.TurnOnBacklight(backlight{})

	task := &fatal.Task{
		Pipeline:   &display.Pipeline{Service: compositor},
		Screen:     &fatal.Screen{Config: conf},
		Context:    ctx,
		PowerReady: powerReady(100 * time.Millisecond),
	}

	if err = task.Run(); err != nil {
		log.Printf("fatal: %v", err)
	}

	if conf.RebootDelay == 0 {
		log.Printf("fatal: automatic reboot disabled")
		applet.Exit()
	}

	time.Sleep(time.Duration(conf.RebootDelay) * time.Second)

	if err = o.Reboot(); err != nil {
		log.Printf("fatal: reboot error, %v", err)
	}

	if o.Mode() == reboot.PayloadReboot {
		if err = (power{}).RebootSystem(); err != nil {
			log.Printf("fatal: reboot error, %v", err)
		}
	}

	applet.Exit()
}
