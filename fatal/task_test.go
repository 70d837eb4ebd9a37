// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"errors"
	"testing"
	"time"

	"github.com/usbarmory/GoTEE-fatal/display"
	"github.com/usbarmory/GoTEE-fatal/display/soft"
	"github.com/usbarmory/GoTEE-fatal/fb"
	"github.com/usbarmory/GoTEE-fatal/text"
)

func TestTaskWaitsForPower(t *testing.T) {
	s := soft.New()
	ready := make(chan struct{})
	done := make(chan error)

	task := &Task{
		Pipeline: &display.Pipeline{Service: s},
		Screen: &Screen{
			NewPrinter: func(buf *fb.Buffer) Printer {
				return text.NewCursor(buf, basic7x13)
			},
		},
		Context:    &CrashContext{ErrorCode: 0xe401, CPU: &Aarch32Context{}},
		PowerReady: ready,
	}

	defer task.Pipeline.Close()

	go func() {
		done <- task.Run()
	}()

	select {
	case err := <-done:
		t.Fatalf("task returned before power ready, %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if s.Open() != 0 || s.Presented() != 0 {
		t.Fatalf("display used before power ready")
	}

	close(ready)

	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if s.Presented() != 1 {
		t.Errorf("presented %d frames", s.Presented())
	}

	// the layer stays on screen
	if s.Open() == 0 {
		t.Errorf("display released after presenting")
	}
}

func TestTaskSetupFault(t *testing.T) {
	s := soft.New()
	s.Fail = map[string]error{"CreateLayer": display.Result(0x1234)}

	ready := make(chan struct{})
	close(ready)

	var fault []uint32

	task := &Task{
		Pipeline: &display.Pipeline{
			Service: s,
			Fault:   func(rc uint32) { fault = append(fault, rc) },
		},
		Screen:     &Screen{},
		Context:    &CrashContext{CPU: &Aarch64Context{}},
		PowerReady: ready,
	}

	err := task.Run()

	var res display.Result

	if !errors.As(err, &res) || res != 0x1234 {
		t.Errorf("unexpected error %v", err)
	}

	if len(fault) != 1 || fault[0] != 0x1234 {
		t.Errorf("fault %v", fault)
	}

	if s.Presented() != 0 || s.Open() != 0 {
		t.Errorf("failed setup left display state")
	}
}

type backlight struct {
	on  bool
	err error
}

func (b *backlight) On() error {
	b.on = true
	return b.err
}

func TestTurnOnBacklight(t *testing.T) {
	b := &backlight{}

	if err := TurnOnBacklight(b); err != nil || !b.on {
		t.Errorf("backlight not switched on, %v", err)
	}

	b = &backlight{err: errors.New("i2c timeout")}

	if err := TurnOnBacklight(b); err == nil {
		t.Error("expected error")
	}
}
