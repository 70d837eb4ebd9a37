// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func stackOf(words ...uint32) []byte {
	buf := make([]byte, 4*len(words))

	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}

	return buf
}

func TestSweepStack(t *testing.T) {
	stack := stackOf(0, 0x96010000, 0x12345678, 0x96010ffc, 0x96011000, 0x95ffffff, 0x96010004)
	// trailing partial word
	stack = append(stack, 0x00, 0x00)

	got := SweepStack(stack, 0x96010000, 0x96011000)
	want := []uint32{0x96010000, 0x96010ffc, 0x96010004}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("trace (-want +got):\n%s", diff)
	}
}

func TestSweepStackDepth(t *testing.T) {
	words := make([]uint32, 2*MaxStackTraceDepth)

	for i := range words {
		words[i] = 0x80000000 + uint32(i)*4
	}

	got := SweepStack(stackOf(words...), 0x80000000, 0x90000000)

	if len(got) != MaxStackTraceDepth || got[0] != 0x80000000 {
		t.Errorf("unexpected trace %x", got)
	}
}
