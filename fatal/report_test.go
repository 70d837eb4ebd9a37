// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReportAarch32(t *testing.T) {
	cpu := &Aarch32Context{PC: 0x96001234, StartAddress: 0x96000000, StackTraceSize: 3}

	cpu.R[0], cpu.HasR[0] = 0x10, true
	cpu.R[13], cpu.HasR[13] = 0x97fffff0, true
	cpu.StackTrace[0] = 0x96001000
	cpu.StackTrace[1] = 0x96002000
	cpu.StackTrace[2] = 0x96003000

	want := &CrashContext{ErrorCode: 0xe401, ProgramID: 0x96000000, CPU: cpu}
	r := NewReport(want)

	if r.Aarch64 || len(r.Registers) != NumAarch32Gprs || len(r.StackTrace) != 3 {
		t.Fatalf("unexpected report %+v", r)
	}

	got, err := r.Context()

	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("context (-want +got):\n%s", diff)
	}
}

func TestReportAarch64(t *testing.T) {
	cpu := &Aarch64Context{PC: 0xffff000000001000, StackTraceSize: MaxStackTraceDepth}

	for i := range cpu.X {
		cpu.X[i], cpu.HasX[i] = uint64(i)<<40, i%3 == 0
	}

	for i := range cpu.StackTrace {
		cpu.StackTrace[i] = 0xffff000000002000 + uint64(i)*8
	}

	want := &CrashContext{ErrorCode: 0x196002, CPU: cpu}
	got, err := NewReport(want).Context()

	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("context (-want +got):\n%s", diff)
	}
}

func TestReportNoCPU(t *testing.T) {
	want := &CrashContext{ErrorCode: 0x1, ProgramID: 0x98000000}
	r := NewReport(want)

	if !r.NoCPU || len(r.Registers) != 0 {
		t.Fatalf("unexpected report %+v", r)
	}

	got, err := r.Context()

	if err != nil {
		t.Fatal(err)
	}

	if got.CPU != nil {
		t.Errorf("register state %+v for a crash without CPU context", got.CPU)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("context (-want +got):\n%s", diff)
	}
}

func TestReportInvalid(t *testing.T) {
	for name, r := range map[string]*Report{
		"presence":  {Registers: []uint64{1}},
		"registers": {Registers: make([]uint64, NumAarch32Gprs+1), Present: make([]bool, NumAarch32Gprs+1)},
		"trace":     {Aarch64: true, StackTrace: make([]uint64, MaxStackTraceDepth+1)},
		"nocpu":     {NoCPU: true, Registers: []uint64{1}, Present: []bool{true}},
	} {
		if _, err := r.Context(); err == nil {
			t.Errorf("%s: invalid report accepted", name)
		}
	}
}
