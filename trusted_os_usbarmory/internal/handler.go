// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gotee

import (
	"fmt"
	"log"

	"github.com/usbarmory/tamago/arm"

	"github.com/usbarmory/GoTEE/monitor"
	"github.com/usbarmory/GoTEE/syscall"

	"github.com/usbarmory/GoTEE-fatal/util"
)

// Console is the SSH console mirroring applet logs, when set.
var Console *util.Console

func goHandler(out *util.Output) func(ctx *monitor.ExecCtx) error {
	return func(ctx *monitor.ExecCtx) (err error) {
		if ctx.ExceptionVector != arm.SUPERVISOR {
			log.Printf("SM trapped applet exception %#x pc:%#.8x", ctx.ExceptionVector, ctx.R15)
			return fmt.Errorf("exception %x", ctx.ExceptionVector)
		}

		switch ctx.A0() {
		case syscall.SYS_WRITE:
			// Override write syscall to avoid interleaved logs and
			// to log simultaneously to remote terminal and serial
			// console.
			if Console != nil && Console.Term != nil {
				out.WriteByte(byte(ctx.A1()), Console.Term)
			} else {
				out.WriteByte(byte(ctx.A1()), nil)
			}
		case syscall.SYS_EXIT:
			ctx.Stop()
		default:
			return monitor.SecureHandler(ctx)
		}

		return
	}
}
