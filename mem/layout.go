// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mem defines the Secure World memory layout shared by the security
// monitor and its applets.
package mem

import (
	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/GoTEE-fatal/iram"
)

const (
	// Secure Monitor
	SecureStart = 0x90000000
	SecureSize  = 0x05f00000 // 95MB

	// Secure Monitor DMA (relocated to avoid conflicts with applets)
	SecureDMAStart = 0x95f00000
	SecureDMASize  = 0x00100000 // 1MB

	// Workload applet
	AppletStart = 0x96000000
	AppletSize  = 0x02000000 // 32MB

	// Fatal screen applet
	FatalAppletStart = 0x98000000
	FatalAppletSize  = 0x02000000 // 32MB

	// IRAM window backing memory, outside of the monitor runtime and
	// preserved across warm resets
	IramStart = 0x9a000000
	IramSize  = 0x00030000 // 192KB

	// Persistent configuration page, preserved across warm resets
	ConfigStart = 0x9a030000
	ConfigSize  = 0x00001000
)

// WorkPage is the fatal applet IRAM staging page, excluded from its runtime
// memory.
const WorkPage = FatalAppletStart + FatalAppletSize - iram.PageSize

var (
	AppletRegion      *dma.Region
	FatalAppletRegion *dma.Region
)

// Init reserves the applet regions.
func Init() {
	AppletRegion, _ = dma.NewRegion(AppletStart, AppletSize, false)
	AppletRegion.Reserve(AppletSize, 0)

	FatalAppletRegion, _ = dma.NewRegion(FatalAppletStart, FatalAppletSize, false)
	FatalAppletRegion.Reserve(FatalAppletSize, 0)
}

// WithinFatalApplet returns whether a memory range lies in the fatal applet
// runtime memory or its work page.
func WithinFatalApplet(addr uint, size uint) bool {
	return addr >= FatalAppletStart && addr+size >= addr && addr+size <= FatalAppletStart+FatalAppletSize
}
