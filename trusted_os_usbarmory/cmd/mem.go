// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/term"

	"github.com/usbarmory/GoTEE-fatal/iram"
	"github.com/usbarmory/GoTEE-fatal/trusted_os_usbarmory/internal"
)

const maxBufferSize = 102400

func init() {
	Add(Cmd{
		Name:    "iram",
		Args:    2,
		Pattern: regexp.MustCompile(`^iram ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex address> <size>",
		Help:    "IRAM window display",
		Fn:      iramCmd,
	})

	Add(Cmd{
		Name:    "peek",
		Args:    2,
		Pattern: regexp.MustCompile(`^peek ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex address> <size>",
		Help:    "memory display (use with caution)",
		Fn:      memReadCmd,
	})
}

func parseRange(arg []string) (addr uint, size int, err error) {
	a, err := strconv.ParseUint(arg[0], 16, 32)

	if err != nil {
		return 0, 0, fmt.Errorf("invalid address, %v", err)
	}

	s, err := strconv.ParseUint(arg[1], 10, 32)

	if err != nil {
		return 0, 0, fmt.Errorf("invalid size, %v", err)
	}

	if s == 0 || s > maxBufferSize {
		return 0, 0, fmt.Errorf("size argument must be between 1 and %d", maxBufferSize)
	}

	return uint(a), int(s), nil
}

func iramCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, size, err := parseRange(arg)

	if err != nil {
		return
	}

	if addr < iram.WindowStart || addr+uint(size) > iram.WindowStart+iram.WindowSize {
		return "", fmt.Errorf("range outside IRAM window %#x-%#x", iram.WindowStart, iram.WindowStart+iram.WindowSize)
	}

	off := addr - iram.WindowStart

	return hex.Dump(gotee.Window.Mem[off : off+uint(size)]), nil
}

func memReadCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, size, err := parseRange(arg)

	if err != nil {
		return
	}

	if (addr%4) != 0 || (size%4) != 0 {
		return "", fmt.Errorf("only 32-bit aligned accesses are supported")
	}

	return hex.Dump(gotee.MemCopy(addr, size, nil)), nil
}
