// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteSummary writes the crash context as plain text, in the order it is
// drawn on the fatal screen.
func WriteSummary(w io.Writer, ctx *CrashContext) error {
	t := tabwriter.NewWriter(w, 8, 8, 1, ' ', 0)

	fmt.Fprintf(t, "Error Code:\t%s (%#x)\n", ctx.ErrorCode, uint32(ctx.ErrorCode))
	fmt.Fprintf(t, "Meaning:\t%s\n", Meaning(ctx.ErrorCode))
	fmt.Fprintf(t, "Program:\t%016X\n", ctx.ProgramID)

	if ctx.CPU == nil {
		return t.Flush()
	}

	d := ctx.CPU.dump()
	hex := fmt.Sprintf("%%0%dX", d.digits)

	fmt.Fprintf(t, "%s\n", d.title)

	for i, name := range d.names {
		fmt.Fprintf(t, "%s:\t"+hex+"\n", name, d.values[i])
	}

	fmt.Fprintf(t, "PC:\t"+hex+"\n", d.pc)
	fmt.Fprintf(t, "Start Address:\t"+hex+"\n", d.start)

	for i, addr := range d.trace {
		fmt.Fprintf(t, "BT[%02d]:\t"+hex+"\n", i, addr)
	}

	return t.Flush()
}
