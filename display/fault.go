// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package display

import (
	"unsafe"
)

// FaultAddress is a known invalid address, a write to it raises a data abort
// which identifies the fatal screen as unable to reach any display.
const FaultAddress = 0xcafebabe

// Fault stores rc at FaultAddress, it does not return.
func Fault(rc uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(FaultAddress))) = rc
}
