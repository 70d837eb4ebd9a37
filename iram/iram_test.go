// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package iram

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const pageAddr = 0x9e0ff000

// monitor serves calls from an emulated window, resolving staging pages by
// address.
type monitor struct {
	window *Window
	pages  map[uint][]byte
	calls  []Args
	err    error
}

func newMonitor(page *Page) *monitor {
	return &monitor{
		window: &Window{Mem: make([]byte, WindowSize)},
		pages:  map[uint][]byte{page.Addr: page.Buf},
	}
}

func (m *monitor) SecureMonitorCall(args *Args) error {
	m.calls = append(m.calls, *args)

	if m.err != nil {
		return m.err
	}

	page, ok := m.pages[args.Page]

	if !ok {
		return errors.New("page not mapped")
	}

	return m.window.Serve(args, page)
}

func newBridge() (*Bridge, *monitor) {
	page := &Page{Addr: pageAddr, Buf: make([]byte, PageSize)}
	m := newMonitor(page)

	return &Bridge{Monitor: m, Page: page}, m
}

func TestCopyToFrom(t *testing.T) {
	b, m := newBridge()

	data := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, PageSize/4)
	addr := uint(WindowStart + 3*PageSize)

	if err := b.CopyTo(addr, data); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(m.window.Mem[3*PageSize:4*PageSize], data) {
		t.Fatal("window not written")
	}

	// clobber the staging page to make sure reads go through the window
	for i := range b.Page.Buf {
		b.Page.Buf[i] = 0
	}

	out := make([]byte, PageSize)

	if err := b.CopyFrom(out, addr); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(out, data) {
		t.Error("read back mismatch")
	}

	want := []Args{
		{Op: OpIramCopy, Page: pageAddr, Addr: addr, Size: PageSize, Direction: Write},
		{Op: OpIramCopy, Page: pageAddr, Addr: addr, Size: PageSize, Direction: Read},
	}

	if diff := cmp.Diff(want, m.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestPartialPage(t *testing.T) {
	b, m := newBridge()

	last := uint(WindowStart + WindowSize - 16)

	if err := b.CopyTo(last, []byte("0123456789abcdef")); err != nil {
		t.Fatal(err)
	}

	if got := string(m.window.Mem[WindowSize-16:]); got != "0123456789abcdef" {
		t.Errorf("window tail %q", got)
	}

	if m.window.Mem[WindowSize-17] != 0 {
		t.Error("write outside requested range")
	}
}

func TestMonitorStatus(t *testing.T) {
	b, m := newBridge()
	m.err = errors.New("smc failed")

	if err := b.CopyTo(WindowStart, []byte{1}); err != m.err {
		t.Errorf("CopyTo() = %v, want %v", err, m.err)
	}

	out := []byte{0xaa}
	b.Page.Buf[0] = 0x55

	if err := b.CopyFrom(out, WindowStart); err != m.err {
		t.Errorf("CopyFrom() = %v, want %v", err, m.err)
	}

	if out[0] != 0xaa {
		t.Error("failed read copied out")
	}
}

func TestBridgeErrors(t *testing.T) {
	b, m := newBridge()

	if err := b.CopyTo(WindowStart, make([]byte, PageSize+1)); err == nil {
		t.Error("oversized write accepted")
	}

	if err := b.CopyFrom(make([]byte, PageSize+1), WindowStart); err == nil {
		t.Error("oversized read accepted")
	}

	b.Page.Addr += 8

	if err := b.CopyTo(WindowStart, []byte{1}); err == nil {
		t.Error("unaligned page accepted")
	}

	if len(m.calls) != 0 {
		t.Errorf("%d monitor calls issued", len(m.calls))
	}
}

func TestValidate(t *testing.T) {
	valid := Args{Op: OpIramCopy, Page: pageAddr, Addr: WindowStart, Size: PageSize, Direction: Write}

	if err := Validate(&valid); err != nil {
		t.Fatal(err)
	}

	for name, mod := range map[string]func(a *Args){
		"op":        func(a *Args) { a.Op = 0xf0000202 },
		"direction": func(a *Args) { a.Direction = 2 },
		"size":      func(a *Args) { a.Size = PageSize + 1 },
		"below":     func(a *Args) { a.Addr = WindowStart - 1 },
		"above":     func(a *Args) { a.Addr = WindowStart + WindowSize - PageSize + 1 },
		"overflow":  func(a *Args) { a.Addr = ^uint(0) - 1 },
	} {
		a := valid
		mod(&a)

		if err := Validate(&a); err == nil {
			t.Errorf("%s: invalid arguments accepted", name)
		}
	}
}
