// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"log"
)

// TestDataAbort attempts a write to unallocated memory.
func TestDataAbort(tag string) {
	var p *byte

	log.Printf("%s is about to trigger a data abort", tag)
	*p = 0xab
}
