// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"runtime/debug"

	"golang.org/x/term"

	"github.com/usbarmory/GoTEE-fatal/fatal"
	"github.com/usbarmory/GoTEE-fatal/trusted_os_usbarmory/internal"
)

func init() {
	Add(Cmd{
		Name: "report",
		Help: "last reported crash context",
		Fn:   reportCmd,
	})

	Add(Cmd{
		Name: "stack",
		Help: "stack trace of the security monitor",
		Fn:   stackCmd,
	})
}

func lastCrash() (*fatal.CrashContext, error) {
	ctx := gotee.LastCrash()

	if ctx == nil {
		return nil, errors.New("no crash reported")
	}

	return ctx, nil
}

func reportCmd(_ *term.Terminal, _ []string) (string, error) {
	var buf bytes.Buffer

	ctx, err := lastCrash()

	if err != nil {
		return "", err
	}

	if err = fatal.WriteSummary(&buf, ctx); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func stackCmd(_ *term.Terminal, _ []string) (string, error) {
	return string(debug.Stack()), nil
}
