// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/term"

	"github.com/usbarmory/GoTEE-fatal/fatal"
	"github.com/usbarmory/GoTEE-fatal/trusted_os_usbarmory/internal"
)

func init() {
	Add(Cmd{
		Name: "crash",
		Help: "run crashing applet and report it on the fatal screen",
		Fn:   crashCmd,
	})

	Add(Cmd{
		Name:    "fatal",
		Args:    1,
		Pattern: regexp.MustCompile(`^fatal ([[:xdigit:]]+)$`),
		Syntax:  "<hex error code>",
		Help:    "show the fatal screen for an error code",
		Fn:      fatalCmd,
	})

	Add(Cmd{
		Name: "config",
		Help: "show persistent configuration",
		Fn:   configCmd,
	})

	Add(Cmd{
		Name:    "config set",
		Args:    2,
		Pattern: regexp.MustCompile(`^config set (\d+) ([[:xdigit:]]+)$`),
		Syntax:  "<item> <hex value>",
		Help:    "set persistent configuration item",
		Fn:      configSetCmd,
	})

	Add(Cmd{
		Name: "reboot",
		Help: "reset device",
		Fn:   rebootCmd,
	})
}

func crashCmd(_ *term.Terminal, _ []string) (res string, err error) {
	return "", gotee.Crash()
}

func fatalCmd(_ *term.Terminal, arg []string) (res string, err error) {
	code, err := strconv.ParseUint(arg[0], 16, 32)

	if err != nil {
		return "", fmt.Errorf("invalid error code, %v", err)
	}

	ctx := &fatal.CrashContext{
		ErrorCode: fatal.ErrorCode(code),
		CPU:       &fatal.Aarch32Context{},
	}

	return "", gotee.Fatal(ctx)
}

func configCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer
	var keys []int

	items := gotee.Config.Items()

	for item := range items {
		keys = append(keys, int(item))
	}

	sort.Ints(keys)

	for _, item := range keys {
		fmt.Fprintf(&buf, "%d: %#x\n", item, items[uint32(item)])
	}

	return buf.String(), nil
}

func configSetCmd(_ *term.Terminal, arg []string) (res string, err error) {
	item, err := strconv.ParseUint(arg[0], 10, 32)

	if err != nil {
		return "", fmt.Errorf("invalid item, %v", err)
	}

	val, err := strconv.ParseUint(arg[1], 16, 64)

	if err != nil {
		return "", fmt.Errorf("invalid value, %v", err)
	}

	return "", gotee.Config.SetConfig(uint32(item), val)
}

func rebootCmd(_ *term.Terminal, _ []string) (res string, err error) {
	return "", gotee.Reboot()
}
