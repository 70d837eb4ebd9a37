// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"errors"
)

// Report represents a crash context in a flat form suitable for RPC
// transport between the security monitor and the fatal applet.
type Report struct {
	ErrorCode uint32
	ProgramID uint64

	// NoCPU marks a crash without captured register state.
	NoCPU bool

	// Aarch64 selects the 64-bit register layout.
	Aarch64   bool
	Registers []uint64
	Present   []bool

	PC           uint64
	StartAddress uint64
	StackTrace   []uint64
}

// NewReport returns the flat form of a crash context.
func NewReport(ctx *CrashContext) (r *Report) {
	r = &Report{
		ErrorCode: uint32(ctx.ErrorCode),
		ProgramID: ctx.ProgramID,
	}

	switch c := ctx.CPU.(type) {
	case *Aarch32Context:
		for i := range c.R {
			r.Registers = append(r.Registers, uint64(c.R[i]))
			r.Present = append(r.Present, c.HasR[i])
		}

		for _, addr := range c.StackTrace[:traceLen(c.StackTraceSize)] {
			r.StackTrace = append(r.StackTrace, uint64(addr))
		}

		r.PC = uint64(c.PC)
		r.StartAddress = uint64(c.StartAddress)
	case *Aarch64Context:
		r.Aarch64 = true
		r.Registers = append(r.Registers, c.X[:]...)
		r.Present = append(r.Present, c.HasX[:]...)
		r.StackTrace = append(r.StackTrace, c.StackTrace[:traceLen(c.StackTraceSize)]...)
		r.PC = c.PC
		r.StartAddress = c.StartAddress
	default:
		r.NoCPU = true
	}

	return
}

// Context returns the crash context represented by the report.
func (r *Report) Context() (ctx *CrashContext, err error) {
	if len(r.Registers) != len(r.Present) {
		return nil, errors.New("register and presence count mismatch")
	}

	if len(r.StackTrace) > MaxStackTraceDepth {
		return nil, errors.New("backtrace exceeds maximum depth")
	}

	ctx = &CrashContext{
		ErrorCode: ErrorCode(r.ErrorCode),
		ProgramID: r.ProgramID,
	}

	if r.NoCPU {
		if len(r.Registers) != 0 || len(r.StackTrace) != 0 || r.Aarch64 {
			return nil, errors.New("register state without CPU context")
		}

		return
	}

	if r.Aarch64 {
		c := &Aarch64Context{
			PC:             r.PC,
			StartAddress:   r.StartAddress,
			StackTraceSize: len(r.StackTrace),
		}

		if len(r.Registers) > NumAarch64Gprs {
			return nil, errors.New("too many registers")
		}

		copy(c.X[:], r.Registers)
		copy(c.HasX[:], r.Present)
		copy(c.StackTrace[:], r.StackTrace)

		ctx.CPU = c

		return
	}

	c := &Aarch32Context{
		PC:             uint32(r.PC),
		StartAddress:   uint32(r.StartAddress),
		StackTraceSize: len(r.StackTrace),
	}

	if len(r.Registers) > NumAarch32Gprs {
		return nil, errors.New("too many registers")
	}

	for i, v := range r.Registers {
		c.R[i] = uint32(v)
	}

	for i, v := range r.StackTrace {
		c.StackTrace[i] = uint32(v)
	}

	copy(c.HasR[:], r.Present)

	ctx.CPU = c

	return
}
