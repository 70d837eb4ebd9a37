// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package display

import (
	"errors"
	"fmt"
	"log"

	"github.com/usbarmory/GoTEE-fatal/fb"
)

// The layer is displayed at 1.5x magnification.
const (
	LayerWidth  = fb.Width * 3 / 2
	LayerHeight = fb.Height * 3 / 2
)

// Pipeline represents the fatal screen compositor layer and its single
// framebuffer.
//
// All resources acquired by Setup are released by Close, or by Setup itself
// when it fails part way.
type Pipeline struct {
	// Service is the host display service.
	Service Service

	// Fault is invoked by Show when the pipeline cannot be set up, it
	// defaults to the Fault function.
	Fault func(rc uint32)

	display Display
	layer   Layer

	window      Window
	framebuffer Framebuffer

	// release functions in acquisition order
	release []func()

	ready bool
	buf   *fb.Buffer
}

func (p *Pipeline) acquired(fn func()) {
	p.release = append(p.release, fn)
}

// setupOutput powers on a physical output and sets it fully opaque, absent
// outputs are skipped.
func (p *Pipeline) setupOutput(name string, power bool) (err error) {
	d, err := p.Service.OpenDisplay(name)

	if errors.Is(err, ResultNotFound) {
		log.Printf("fatal display %s not present", name)
		return nil
	}

	if err != nil {
		return
	}

	defer p.Service.CloseDisplay(d)

	if power {
		if err = p.Service.SetDisplayPowerState(d, true); err != nil {
			return
		}
	}

	return p.Service.SetDisplayAlpha(d, 1.0)
}

// Setup connects to the display service, takes over the screen and creates
// a topmost layer, centered on the default display, backed by one tiled
// RGB565 framebuffer.
func (p *Pipeline) Setup() (err error) {
	if p.ready {
		return errors.New("pipeline already set up")
	}

	defer func() {
		if err != nil {
			p.Close()
		}
	}()

	if err = p.Service.Initialize(ServiceManager); err != nil {
		return
	}
	p.acquired(p.Service.Exit)

	if verr := p.Service.SetContentVisibility(false); verr != nil {
		log.Printf("fatal display could not hide content, %v", verr)
	}

	if err = p.setupOutput(Internal, true); err != nil {
		return
	}

	if err = p.setupOutput(External, false); err != nil {
		return
	}

	if p.display, err = p.Service.OpenDefaultDisplay(); err != nil {
		return
	}
	p.acquired(func() { p.Service.CloseDisplay(p.display) })

	w, h, err := p.Service.LogicalResolution(p.display)

	if err != nil {
		return
	}

	// reset any pan/zoom
	if err = p.Service.SetDisplayMagnification(p.display, 0, 0, w, h); err != nil {
		return
	}

	if p.layer, err = p.Service.CreateLayer(p.display); err != nil {
		return
	}
	p.acquired(func() { p.Service.CloseLayer(p.layer) })

	if err = p.Service.SetLayerSize(p.layer, LayerWidth, LayerHeight); err != nil {
		return
	}

	// Place the layer above everything else, a display without a known
	// maximum leaves the default Z in place.
	if z, zerr := p.Service.MaximumZ(p.display); zerr == nil {
		if err = p.Service.SetLayerZ(p.layer, z); err != nil {
			return
		}
	} else {
		log.Printf("fatal display could not read maximum Z, %v", zerr)
	}

	x := float32((int(w) - LayerWidth) / 2)
	y := float32((int(h) - LayerHeight) / 2)

	if err = p.Service.SetLayerPosition(p.layer, x, y); err != nil {
		return
	}

	if p.window, err = p.Service.CreateWindow(p.layer); err != nil {
		return
	}
	p.acquired(func() { p.Service.CloseWindow(p.window) })

	if p.framebuffer, err = p.Service.CreateFramebuffer(p.window, fb.Width, fb.Height, PixelFormatRGB565, 1); err != nil {
		return
	}
	p.acquired(func() { p.Service.CloseFramebuffer(p.framebuffer) })

	p.ready = true

	return
}

// Begin returns the framebuffer page for exclusive drawing until End.
func (p *Pipeline) Begin() (buf *fb.Buffer, err error) {
	if !p.ready {
		return nil, errors.New("pipeline not set up")
	}

	if p.buf != nil {
		return nil, errors.New("buffer already checked out")
	}

	pix, err := p.Service.Dequeue(p.framebuffer)

	if err != nil {
		return
	}

	if pix == nil {
		return nil, ResultNullBuffer
	}

	if len(pix) < fb.Size {
		return nil, fmt.Errorf("short framebuffer (%d < %d)", len(pix), fb.Size)
	}

	p.buf = &fb.Buffer{Pix: pix}

	return p.buf, nil
}

// End submits the framebuffer page, the buffer returned by Begin is no
// longer valid.
func (p *Pipeline) End() (err error) {
	if p.buf == nil {
		return errors.New("no buffer checked out")
	}

	p.buf.Pix = nil
	p.buf = nil

	return p.Service.Queue(p.framebuffer)
}

// Close releases every resource acquired by Setup, in reverse order. It is
// safe to call on a pipeline which is not set up.
func (p *Pipeline) Close() {
	for i := len(p.release) - 1; i >= 0; i-- {
		p.release[i]()
	}

	p.release = nil
	p.ready = false
	p.buf = nil
}

// Show sets up the pipeline and draws a single frame with the argument
// function. The layer stays on screen until Close.
//
// A setup failure leaves no way to report the crash, in this case Show
// invokes the terminal Fault fallback with the failing result code.
func (p *Pipeline) Show(draw func(buf *fb.Buffer)) (err error) {
	if err = p.Setup(); err != nil {
		log.Printf("fatal display setup failed, %v", err)

		fault := p.Fault

		if fault == nil {
			fault = Fault
		}

		fault(ResultCode(err))

		return
	}

	buf, err := p.Begin()

	if err != nil {
		return
	}

	draw(buf)

	return p.End()
}

// ResultCode returns the service result code carried by err, or all ones
// when err is not a Result.
func ResultCode(err error) uint32 {
	var rc Result

	if errors.As(err, &rc) {
		return uint32(rc)
	}

	return 0xffffffff
}
