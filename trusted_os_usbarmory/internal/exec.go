// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gotee

import (
	"errors"
	"fmt"
	"log"
	"sync"

	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
	"github.com/usbarmory/tamago/soc/nxp/imx6ul"

	"github.com/usbarmory/GoTEE-fatal/fatal"
	"github.com/usbarmory/GoTEE-fatal/mem"
	"github.com/usbarmory/GoTEE-fatal/reboot"
	"github.com/usbarmory/GoTEE-fatal/util"
)

// ErrorModule is the error module of applet crashes, the description holds
// the exception vector.
const ErrorModule = 168

// Maximum stack area swept for backtrace candidates.
const maxStackSweep = 0x4000

var (
	appletOutput = &util.Output{Tag: "applet: "}
	fatalOutput  = &util.Output{Tag: "fatal: "}
)

var last struct {
	sync.Mutex
	ctx *fatal.CrashContext
}

// LastCrash returns the most recently reported crash context, nil if none.
func LastCrash() *fatal.CrashContext {
	last.Lock()
	defer last.Unlock()

	return last.ctx
}

// Crash runs the workload applet and reports its crash context, if any, on
// the fatal screen.
func Crash() (err error) {
	ta, err := loadApplet("applet", TA, mem.AppletRegion, &RPC{}, appletOutput)

	if err != nil {
		return
	}

	usbarmory.LED("blue", true)
	defer usbarmory.LED("blue", false)

	if err = ta.run(); err == nil {
		log.Printf("SM applet exited without errors")
		return
	}

	return Fatal(capture(ta))
}

// Fatal runs the fatal screen applet for the argument crash context.
func Fatal(ctx *fatal.CrashContext) (err error) {
	log.Printf("SM reporting error %s (%#x)", ctx.ErrorCode, uint32(ctx.ErrorCode))

	last.Lock()
	last.ctx = ctx
	last.Unlock()

	rpc := &RPC{
		Report: fatal.NewReport(ctx),
	}

	fa, err := loadApplet("fatal", FA, mem.FatalAppletRegion, rpc, fatalOutput)

	if err != nil {
		return
	}

	// keep the IRAM staging page out of the applet stack
	fa.R13 = mem.WorkPage

	return fa.run()
}

// capture returns the crash context of a stopped applet.
func capture(ta *applet) *fatal.CrashContext {
	cpu := &fatal.Aarch32Context{
		PC:           ta.R15,
		StartAddress: uint32(ta.Memory.Start()),
	}

	regs := []uint32{
		ta.R0, ta.R1, ta.R2, ta.R3, ta.R4, ta.R5, ta.R6, ta.R7,
		ta.R8, ta.R9, ta.R10, ta.R11, ta.R12, ta.R13, ta.R14,
	}

	for i, r := range regs {
		cpu.R[i] = r
		cpu.HasR[i] = true
	}

	if ta.symbols != nil {
		cpu.StackTrace, cpu.StackTraceSize = sweep(ta)
	}

	return &fatal.CrashContext{
		ErrorCode: fatal.MakeErrorCode(ErrorModule, uint32(ta.ExceptionVector)),
		ProgramID: uint64(ta.Memory.Start()),
		CPU:       cpu,
	}
}

func sweep(ta *applet) (trace [fatal.MaxStackTraceDepth]uint32, n int) {
	start, end, err := ta.symbols.Text()

	if err != nil {
		log.Printf("SM could not sweep %s stack, %v", ta.name, err)
		return
	}

	sp := uint(ta.R13)
	top := ta.Memory.End()

	if sp < ta.Memory.Start() || sp >= top {
		log.Printf("SM %s stack pointer %#x outside applet memory", ta.name, sp)
		return
	}

	size := top - sp

	if size > maxStackSweep {
		size = maxStackSweep
	}

	addrs := fatal.SweepStack(MemCopy(sp, int(size), nil), uint32(start), uint32(end))

	for i, pc := range addrs {
		if l, err := ta.symbols.PCToLine(uint64(pc)); err == nil {
			log.Printf("SM %s BT[%02d] %#.8x %s", ta.name, i, pc, l)
		}
	}

	return trace, copy(trace[:], addrs)
}

// Reboot resets the SoC.
func Reboot() error {
	if !imx6ul.Native {
		return errors.New("reset unsupported under emulation")
	}

	log.Printf("SM resetting")
	imx6ul.Reset()

	return nil
}

// Staged boots the payload staged in the IRAM window on the previous boot,
// if selected by the persistent configuration. The selection is cleared
// before booting.
func Staged() (err error) {
	if !Config.Staged() {
		return
	}

	Config.ClearConfig(reboot.ConfigItem)

	log.Printf("SM booting staged payload")

	ta, err := loadApplet("payload", Window.Mem, mem.AppletRegion, &RPC{}, appletOutput)

	if err != nil {
		return fmt.Errorf("SM could not boot staged payload, %v", err)
	}

	if err = ta.run(); err != nil {
		return Fatal(capture(ta))
	}

	return
}
