// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"log"

	"github.com/usbarmory/GoTEE-fatal/display"
	"github.com/usbarmory/GoTEE-fatal/fb"
)

// Task represents the fatal screen task.
type Task struct {
	Pipeline *display.Pipeline
	Screen   *Screen
	Context  *CrashContext

	// PowerReady is closed once the power status is known, the task
	// waits for it without timeout.
	PowerReady <-chan struct{}
}

// Run waits for PowerReady and then shows the fatal screen, the layer stays
// on screen until reboot.
func (t *Task) Run() (err error) {
	<-t.PowerReady

	log.Printf("fatal: showing error %s (%#x)", t.Context.ErrorCode, uint32(t.Context.ErrorCode))

	return t.Pipeline.Show(func(buf *fb.Buffer) {
		t.Screen.Draw(buf, t.Context)
	})
}

// Backlight is the interface to the display backlight.
type Backlight interface {
	On() error
}

// TurnOnBacklight is the backlight task, it switches the backlight on
// independently from the screen task.
func TurnOnBacklight(b Backlight) (err error) {
	if err = b.On(); err != nil {
		log.Printf("fatal: could not turn on backlight, %v", err)
	}

	return
}
