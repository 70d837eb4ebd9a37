// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package fatal implements the fatal error screen, reporting a captured crash
// context on the display.
package fatal

import (
	"fmt"
)

// MaxStackTraceDepth is the backtrace capacity of a captured context.
const MaxStackTraceDepth = 32

// Register counts, the program counter is held separately.
const (
	NumAarch32Gprs = 15
	NumAarch64Gprs = 32
)

var aarch32GprNames = [NumAarch32Gprs]string{
	"R0", "R1", "R2", "R3", "R4", "R5", "R6", "R7", "R8", "R9", "R10",
	"FP", "IP", "SP", "LR",
}

var aarch64GprNames = [NumAarch64Gprs]string{
	"X0", "X1", "X2", "X3", "X4", "X5", "X6", "X7", "X8", "X9",
	"X10", "X11", "X12", "X13", "X14", "X15", "X16", "X17", "X18", "X19",
	"X20", "X21", "X22", "X23", "X24", "X25", "X26", "X27", "X28",
	"FP", "LR", "SP",
}

// ErrorCode represents a result code, packing a module and a description.
type ErrorCode uint32

// Module returns the error module (bits 0-8).
func (e ErrorCode) Module() uint32 {
	return uint32(e) & 0x1ff
}

// Description returns the error description (bits 9-21).
func (e ErrorCode) Description() uint32 {
	return (uint32(e) >> 9) & 0x1fff
}

// String returns the conventional 2XXX-YYYY representation.
func (e ErrorCode) String() string {
	return fmt.Sprintf("2%03d-%04d", e.Module(), e.Description())
}

// CrashContext represents the state captured when an unrecoverable error
// occurs. It must not be modified once captured.
type CrashContext struct {
	// ErrorCode is the error which caused the crash.
	ErrorCode ErrorCode
	// ProgramID identifies the owning process.
	ProgramID uint64
	// CPU is either an *Aarch32Context or an *Aarch64Context.
	CPU CPUContext
}

// CPUContext represents an architecture specific register state.
type CPUContext interface {
	dump() *registerDump
}

// Aarch32Context represents a 32-bit CPU state.
type Aarch32Context struct {
	// R holds the general purpose registers, HasR flags the captured
	// ones.
	R    [NumAarch32Gprs]uint32
	HasR [NumAarch32Gprs]bool

	PC           uint32
	StartAddress uint32

	StackTrace     [MaxStackTraceDepth]uint32
	StackTraceSize int
}

// Aarch64Context represents a 64-bit CPU state.
type Aarch64Context struct {
	// X holds the general purpose registers, HasX flags the captured
	// ones.
	X    [NumAarch64Gprs]uint64
	HasX [NumAarch64Gprs]bool

	PC           uint64
	StartAddress uint64

	StackTrace     [MaxStackTraceDepth]uint64
	StackTraceSize int
}

// registerDump is the architecture independent view drawn by Screen.
type registerDump struct {
	title  string
	digits int

	names  []string
	values []uint64

	pc    uint64
	start uint64
	trace []uint64

	// backtrace column and lane width
	traceX    int
	laneWidth int
}

func traceLen(n int) int {
	switch {
	case n < 0:
		return 0
	case n > MaxStackTraceDepth:
		return MaxStackTraceDepth
	default:
		return n
	}
}

func (c *Aarch32Context) dump() *registerDump {
	d := &registerDump{
		title:     "Arm32 Registers:",
		digits:    8,
		names:     aarch32GprNames[:],
		values:    make([]uint64, NumAarch32Gprs),
		pc:        uint64(c.PC),
		start:     uint64(c.StartAddress),
		traceX:    950,
		laneWidth: 148,
	}

	for i, r := range c.R {
		if c.HasR[i] {
			d.values[i] = uint64(r)
		}
	}

	for _, addr := range c.StackTrace[:traceLen(c.StackTraceSize)] {
		d.trace = append(d.trace, uint64(addr))
	}

	return d
}

func (c *Aarch64Context) dump() *registerDump {
	d := &registerDump{
		title:     "Arm64 Registers:",
		digits:    16,
		names:     aarch64GprNames[:],
		values:    make([]uint64, NumAarch64Gprs),
		pc:        c.PC,
		start:     c.StartAddress,
		traceX:    866,
		laneWidth: 206,
	}

	for i, x := range c.X {
		if c.HasX[i] {
			d.values[i] = x
		}
	}

	d.trace = append(d.trace, c.StackTrace[:traceLen(c.StackTraceSize)]...)

	return d
}

// MakeErrorCode packs an error module and description.
func MakeErrorCode(module uint32, description uint32) ErrorCode {
	return ErrorCode(module&0x1ff | (description&0x1fff)<<9)
}
