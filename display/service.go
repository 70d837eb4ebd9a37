// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package display implements the fatal screen pipeline: a single full screen
// compositor layer with one tiled framebuffer.
package display

import (
	"fmt"
)

// Result represents a display service result code.
type Result uint32

// Error implements error.
func (r Result) Error() string {
	return fmt.Sprintf("display service error 2%03d-%04d (%#x)", r.Module(), r.Description(), uint32(r))
}

// Module returns the result module.
func (r Result) Module() uint32 {
	return uint32(r) & 0x1ff
}

// Description returns the result description.
func (r Result) Description() uint32 {
	return (uint32(r) >> 9) & 0x1fff
}

// Display service results.
const (
	// ResultNotFound is returned when opening a physical output which is
	// not present.
	ResultNotFound Result = 0xe72
	// ResultNullBuffer is returned when no buffer could be dequeued.
	ResultNullBuffer Result = 0x8a3
)

// ServiceType selects the display service privilege level.
type ServiceType int

// Display service types.
const (
	ServiceApplication ServiceType = iota
	ServiceSystem
	ServiceManager
)

// PixelFormat is a framebuffer pixel format.
type PixelFormat int

// Framebuffer pixel formats.
const (
	PixelFormatRGBA8888 PixelFormat = iota
	PixelFormatRGB565
)

// Physical output names.
const (
	Internal = "Internal"
	External = "External"
)

// Handle types, their values are only meaningful to the service which
// issued them.
type (
	Display     uint64
	Layer       uint64
	Window      uint64
	Framebuffer uint64
)

// Service represents the host display service.
type Service interface {
	// Initialize connects to the service.
	Initialize(t ServiceType) error
	// Exit disconnects from the service.
	Exit()

	// SetContentVisibility shows or hides all other content.
	SetContentVisibility(visible bool) error

	OpenDisplay(name string) (Display, error)
	OpenDefaultDisplay() (Display, error)
	CloseDisplay(d Display) error

	SetDisplayPowerState(d Display, on bool) error
	SetDisplayAlpha(d Display, alpha float32) error
	LogicalResolution(d Display) (width uint32, height uint32, err error)
	SetDisplayMagnification(d Display, x, y, width, height uint32) error
	MaximumZ(d Display) (uint64, error)

	CreateLayer(d Display) (Layer, error)
	CloseLayer(l Layer) error
	SetLayerSize(l Layer, width, height uint32) error
	SetLayerPosition(l Layer, x, y float32) error
	SetLayerZ(l Layer, z uint64) error

	CreateWindow(l Layer) (Window, error)
	CloseWindow(w Window) error

	CreateFramebuffer(w Window, width, height uint32, format PixelFormat, buffers int) (Framebuffer, error)
	CloseFramebuffer(f Framebuffer) error

	// Dequeue returns the next buffer for drawing, nil when none is
	// available.
	Dequeue(f Framebuffer) ([]uint16, error)
	// Queue submits the dequeued buffer for composition.
	Queue(f Framebuffer) error
}
