// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package iram implements page transfers between applet memory and the
// on-chip memory window through a secure monitor call.
package iram

import (
	"errors"
	"fmt"
)

// OpIramCopy is the secure monitor call operation code.
const OpIramCopy = 0xf0000201

// PageSize is the transfer unit.
const PageSize = 0x1000

// IRAM window
const (
	WindowStart = 0x40010000
	WindowSize  = 0x2f000
)

// Transfer directions
const (
	// Read copies from the window into the staging page.
	Read = 0
	// Write copies from the staging page into the window.
	Write = 1
)

// Args represents the monitor call arguments.
type Args struct {
	Op uint32
	// Page is the staging page address.
	Page uint
	// Addr is the window address.
	Addr uint
	// Size is the transfer size, at most one page.
	Size uint
	// Direction is Read or Write.
	Direction uint
	// Reserved is unused and must be zero.
	Reserved uint
}

// Monitor is the interface to the privileged call, returning its status.
type Monitor interface {
	SecureMonitorCall(args *Args) error
}

// Validate checks the monitor call arguments against the window bounds.
func Validate(args *Args) error {
	if args.Op != OpIramCopy {
		return fmt.Errorf("invalid operation %#x", args.Op)
	}

	if args.Direction != Read && args.Direction != Write {
		return fmt.Errorf("invalid direction %d", args.Direction)
	}

	if args.Size > PageSize {
		return fmt.Errorf("invalid size %#x", args.Size)
	}

	if args.Addr < WindowStart || args.Addr+args.Size > WindowStart+WindowSize || args.Addr+args.Size < args.Addr {
		return fmt.Errorf("invalid address %#x", args.Addr)
	}

	return nil
}

// Page represents the staging page, it must be page aligned and reachable by
// the monitor.
type Page struct {
	// Addr is the page address.
	Addr uint
	// Buf is the page memory.
	Buf []byte
}

// Bridge represents a transfer path to the IRAM window. Its staging page is
// used by a single caller at a time.
type Bridge struct {
	Monitor Monitor
	Page    *Page
}

func (b *Bridge) call(addr uint, size int, dir uint) error {
	if b.Page == nil || len(b.Page.Buf) < PageSize {
		return errors.New("invalid staging page")
	}

	if b.Page.Addr%PageSize != 0 {
		return fmt.Errorf("unaligned staging page %#x", b.Page.Addr)
	}

	if size > PageSize {
		return fmt.Errorf("transfer size %d exceeds page size", size)
	}

	return b.Monitor.SecureMonitorCall(&Args{
		Op:        OpIramCopy,
		Page:      b.Page.Addr,
		Addr:      addr,
		Size:      uint(size),
		Direction: dir,
	})
}

// CopyTo writes buf, at most one page, at the argument window address.
func (b *Bridge) CopyTo(addr uint, buf []byte) (err error) {
	if len(buf) > PageSize {
		return fmt.Errorf("transfer size %d exceeds page size", len(buf))
	}

	if b.Page != nil {
		copy(b.Page.Buf, buf)
	}

	return b.call(addr, len(buf), Write)
}

// CopyFrom reads buf, at most one page, from the argument window address.
func (b *Bridge) CopyFrom(buf []byte, addr uint) (err error) {
	if err = b.call(addr, len(buf), Read); err != nil {
		return
	}

	copy(buf, b.Page.Buf)

	return
}

// Window represents the memory backing the IRAM window.
type Window struct {
	// Mem holds WindowSize bytes.
	Mem []byte
}

// Serve validates and performs a monitor call against the staging page
// memory.
func (w *Window) Serve(args *Args, page []byte) (err error) {
	if err = Validate(args); err != nil {
		return
	}

	if uint(len(page)) < args.Size {
		return errors.New("invalid staging page")
	}

	off := args.Addr - WindowStart
	mem := w.Mem[off : off+args.Size]

	switch args.Direction {
	case Read:
		copy(page, mem)
	case Write:
		copy(mem, page[:args.Size])
	}

	return
}
