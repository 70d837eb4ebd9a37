// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func summaryLines(t *testing.T, ctx *CrashContext) (lines []string) {
	t.Helper()

	var buf bytes.Buffer

	if err := WriteSummary(&buf, ctx); err != nil {
		t.Fatal(err)
	}

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		lines = append(lines, strings.Join(strings.Fields(line), " "))
	}

	return
}

func TestWriteSummary(t *testing.T) {
	cpu := &Aarch32Context{PC: 0x96001234, StartAddress: 0x96000000, StackTraceSize: 2}

	cpu.R[13], cpu.HasR[13] = 0x97fffff0, true
	cpu.R[14] = 0xdeadbeef
	cpu.StackTrace[0] = 0x96001000
	cpu.StackTrace[1] = 0x96002000

	lines := summaryLines(t, &CrashContext{
		ErrorCode: 0xe401,
		ProgramID: 0x96000000,
		CPU:       cpu,
	})

	want := []string{
		"Error Code: 2001-0114 (0xe401)",
		"Meaning: Invalid handle.",
		"Program: 0000000096000000",
		"Arm32 Registers:",
		"R0: 00000000",
	}

	if diff := cmp.Diff(want, lines[:len(want)]); diff != "" {
		t.Errorf("summary (-want +got):\n%s", diff)
	}

	want = []string{
		"SP: 97FFFFF0",
		"LR: 00000000",
		"PC: 96001234",
		"Start Address: 96000000",
		"BT[00]: 96001000",
		"BT[01]: 96002000",
	}

	if diff := cmp.Diff(want, lines[len(lines)-len(want):]); diff != "" {
		t.Errorf("dump (-want +got):\n%s", diff)
	}
}

func TestWriteSummaryNoCPU(t *testing.T) {
	lines := summaryLines(t, &CrashContext{ErrorCode: 0x1})

	if len(lines) != 3 || lines[1] != "Meaning: Unknown." {
		t.Errorf("unexpected summary %q", lines)
	}
}
