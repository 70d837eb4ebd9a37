// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"encoding/binary"
)

// SweepStack scans 32-bit stack words for values within the [start, end)
// text range, returning at most MaxStackTraceDepth candidate return
// addresses starting from the top of the stack.
func SweepStack(stack []byte, start uint32, end uint32) (trace []uint32) {
	for i := 0; i+4 <= len(stack) && len(trace) < MaxStackTraceDepth; i += 4 {
		addr := binary.LittleEndian.Uint32(stack[i : i+4])

		if addr >= start && addr < end {
			trace = append(trace, addr)
		}
	}

	return
}
