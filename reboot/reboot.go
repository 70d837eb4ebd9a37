// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package reboot implements the choice between a normal system reboot and a
// reboot into a payload staged in the IRAM window.
package reboot

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/usbarmory/GoTEE-fatal/iram"
)

// Persistent configuration item consulted by the next boot stage, ConfigValue
// selects the staged payload.
const (
	ConfigItem  = 65001
	ConfigValue = 2
)

// ConfigSetter is the interface to the persistent configuration.
type ConfigSetter interface {
	SetConfig(item uint32, value uint64) error
}

// Power is the interface to the power control service.
type Power interface {
	RebootSystem() error
}

// Mode represents the reboot path.
type Mode int

// Reboot paths
const (
	NormalReboot Mode = iota
	PayloadReboot
)

func (m Mode) String() string {
	switch m {
	case NormalReboot:
		return "normal"
	case PayloadReboot:
		return "payload"
	default:
		return "invalid"
	}
}

// Orchestrator represents the reboot state machine.
type Orchestrator struct {
	Bridge  *iram.Bridge
	Config  ConfigSetter
	Power   Power
	Payload *Payload

	once sync.Once
	mode Mode
}

// Mode returns the reboot path, it is decided on first use and never
// re-evaluated.
func (o *Orchestrator) Mode() Mode {
	o.once.Do(func() {
		if o.Payload != nil && o.Payload.Loaded {
			o.mode = PayloadReboot
		}
	})

	return o.mode
}

// Reboot performs the reboot path action.
//
// The normal path reboots the system. The payload path stages the payload
// in the IRAM window and selects it in the persistent configuration, the
// caller is then expected to reboot the system.
func (o *Orchestrator) Reboot() (err error) {
	mode := o.Mode()

	log.Printf("fatal: %s reboot", mode)

	switch mode {
	case PayloadReboot:
		return o.stage()
	case NormalReboot:
		if o.Power == nil {
			return errors.New("missing power control")
		}

		return o.Power.RebootSystem()
	}

	return
}

func (o *Orchestrator) write(off int, buf []byte) {
	addr := uint(iram.WindowStart + off)

	// the monitor call status is reported but does not alter the reboot
	// path
	if err := o.Bridge.CopyTo(addr, buf); err != nil {
		log.Printf("fatal: IRAM write at %#x failed, %v", addr, err)
	}
}

func (o *Orchestrator) stage() (err error) {
	if o.Bridge == nil || o.Config == nil {
		return errors.New("missing IRAM bridge or configuration")
	}

	if len(o.Payload.Buf) != iram.WindowSize {
		return fmt.Errorf("invalid payload buffer size %d", len(o.Payload.Buf))
	}

	fill := bytes.Repeat([]byte{FillByte}, iram.PageSize)

	for off := 0; off < iram.WindowSize; off += iram.PageSize {
		o.write(off, fill)
	}

	for off := 0; off < iram.WindowSize; off += iram.PageSize {
		o.write(off, o.Payload.Buf[off:off+iram.PageSize])
	}

	log.Printf("fatal: staged %d bytes payload at %#x", o.Payload.Size, iram.WindowStart)

	return o.Config.SetConfig(ConfigItem, ConfigValue)
}
