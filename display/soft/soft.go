// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package soft implements an in-memory display service, composing queued
// tiled framebuffers onto a linear canvas.
//
// It stands in for the host compositor on targets without a display
// controller and under emulation.
package soft

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/usbarmory/GoTEE-fatal/display"
	"github.com/usbarmory/GoTEE-fatal/fb"
)

// ResultInvalidHandle is returned for unknown or closed handles.
const ResultInvalidHandle display.Result = 0xe401

// Default display geometry.
const (
	DefaultWidth    = 1920
	DefaultHeight   = 1080
	DefaultMaximumZ = 255
)

// Output represents the state of a physical output.
type Output struct {
	Present bool
	On      bool
	Alpha   float32
}

// LayerState represents the geometry of a layer.
type LayerState struct {
	Width  uint32
	Height uint32
	X      float32
	Y      float32
	Z      uint64
}

type framebuffer struct {
	layer    display.Layer
	pix      []uint16
	dequeued bool
}

// Service is an in-memory display service.
type Service struct {
	// Width and Height are the default display logical resolution.
	Width  uint32
	Height uint32
	// MaxZ is the highest layer Z of the default display.
	MaxZ uint64

	// Fail maps operation names (e.g. "CreateLayer", or
	// "OpenDisplay:External" for a specific output) to injected errors.
	Fail map[string]error

	// OnPresent, when set, receives the canvas after each composition.
	OnPresent func(screen *image.RGBA)

	mu sync.Mutex

	connected      bool
	contentVisible bool
	next           uint64

	outputs      map[string]*Output
	displays     map[display.Display]string
	layers       map[display.Layer]*LayerState
	windows      map[display.Window]display.Layer
	framebuffers map[display.Framebuffer]*framebuffer

	screen    *image.RGBA
	presented int
}

// New returns a service with a present internal panel and no external
// output.
func New() *Service {
	return &Service{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		MaxZ:           DefaultMaximumZ,
		contentVisible: true,
		outputs: map[string]*Output{
			display.Internal: {Present: true},
			display.External: {Present: false},
		},
		displays:     make(map[display.Display]string),
		layers:       make(map[display.Layer]*LayerState),
		windows:      make(map[display.Window]display.Layer),
		framebuffers: make(map[display.Framebuffer]*framebuffer),
	}
}

func (s *Service) fail(op string) error {
	return s.Fail[op]
}

func (s *Service) handle() uint64 {
	s.next++
	return s.next
}

// Initialize implements display.Service.
func (s *Service) Initialize(t display.ServiceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("Initialize"); err != nil {
		return err
	}

	if s.connected {
		return errors.New("already connected")
	}

	s.connected = true

	return nil
}

// Exit implements display.Service.
func (s *Service) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
}

// SetContentVisibility implements display.Service.
func (s *Service) SetContentVisibility(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("SetContentVisibility"); err != nil {
		return err
	}

	s.contentVisible = visible

	return nil
}

// SetOutput sets the presence of a physical output.
func (s *Service) SetOutput(name string, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outputs[name] = &Output{Present: present}
}

// OpenDisplay implements display.Service.
func (s *Service) OpenDisplay(name string) (d display.Display, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.fail("OpenDisplay"); err != nil {
		return
	}

	if err = s.fail("OpenDisplay:" + name); err != nil {
		return
	}

	if o, ok := s.outputs[name]; !ok || !o.Present {
		return 0, display.ResultNotFound
	}

	d = display.Display(s.handle())
	s.displays[d] = name

	return
}

// OpenDefaultDisplay implements display.Service.
func (s *Service) OpenDefaultDisplay() (d display.Display, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.fail("OpenDefaultDisplay"); err != nil {
		return
	}

	d = display.Display(s.handle())
	s.displays[d] = "Default"

	return
}

// CloseDisplay implements display.Service.
func (s *Service) CloseDisplay(d display.Display) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.displays[d]; !ok {
		return ResultInvalidHandle
	}

	delete(s.displays, d)

	return nil
}

func (s *Service) output(d display.Display) (*Output, error) {
	name, ok := s.displays[d]

	if !ok {
		return nil, ResultInvalidHandle
	}

	o, ok := s.outputs[name]

	if !ok {
		return nil, fmt.Errorf("display %s has no physical output", name)
	}

	return o, nil
}

// SetDisplayPowerState implements display.Service.
func (s *Service) SetDisplayPowerState(d display.Display, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("SetDisplayPowerState"); err != nil {
		return err
	}

	o, err := s.output(d)

	if err != nil {
		return err
	}

	o.On = on

	return nil
}

// SetDisplayAlpha implements display.Service.
func (s *Service) SetDisplayAlpha(d display.Display, alpha float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("SetDisplayAlpha"); err != nil {
		return err
	}

	o, err := s.output(d)

	if err != nil {
		return err
	}

	o.Alpha = alpha

	return nil
}

// LogicalResolution implements display.Service.
func (s *Service) LogicalResolution(d display.Display) (uint32, uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("LogicalResolution"); err != nil {
		return 0, 0, err
	}

	if _, ok := s.displays[d]; !ok {
		return 0, 0, ResultInvalidHandle
	}

	return s.Width, s.Height, nil
}

// SetDisplayMagnification implements display.Service.
func (s *Service) SetDisplayMagnification(d display.Display, x, y, width, height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("SetDisplayMagnification"); err != nil {
		return err
	}

	if _, ok := s.displays[d]; !ok {
		return ResultInvalidHandle
	}

	if x != 0 || y != 0 || width != s.Width || height != s.Height {
		return fmt.Errorf("unsupported magnification %dx%d+%d+%d", width, height, x, y)
	}

	return nil
}

// MaximumZ implements display.Service.
func (s *Service) MaximumZ(d display.Display) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("MaximumZ"); err != nil {
		return 0, err
	}

	if _, ok := s.displays[d]; !ok {
		return 0, ResultInvalidHandle
	}

	return s.MaxZ, nil
}

// CreateLayer implements display.Service.
func (s *Service) CreateLayer(d display.Display) (l display.Layer, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.fail("CreateLayer"); err != nil {
		return
	}

	if _, ok := s.displays[d]; !ok {
		return 0, ResultInvalidHandle
	}

	l = display.Layer(s.handle())
	s.layers[l] = &LayerState{}

	return
}

// CloseLayer implements display.Service.
func (s *Service) CloseLayer(l display.Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layers[l]; !ok {
		return ResultInvalidHandle
	}

	delete(s.layers, l)

	return nil
}

func (s *Service) layer(op string, l display.Layer) (*LayerState, error) {
	if err := s.fail(op); err != nil {
		return nil, err
	}

	ls, ok := s.layers[l]

	if !ok {
		return nil, ResultInvalidHandle
	}

	return ls, nil
}

// SetLayerSize implements display.Service.
func (s *Service) SetLayerSize(l display.Layer, width, height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.layer("SetLayerSize", l)

	if err != nil {
		return err
	}

	ls.Width = width
	ls.Height = height

	return nil
}

// SetLayerPosition implements display.Service.
func (s *Service) SetLayerPosition(l display.Layer, x, y float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.layer("SetLayerPosition", l)

	if err != nil {
		return err
	}

	ls.X = x
	ls.Y = y

	return nil
}

// SetLayerZ implements display.Service.
func (s *Service) SetLayerZ(l display.Layer, z uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, err := s.layer("SetLayerZ", l)

	if err != nil {
		return err
	}

	ls.Z = z

	return nil
}

// CreateWindow implements display.Service.
func (s *Service) CreateWindow(l display.Layer) (w display.Window, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err = s.layer("CreateWindow", l); err != nil {
		return
	}

	w = display.Window(s.handle())
	s.windows[w] = l

	return
}

// CloseWindow implements display.Service.
func (s *Service) CloseWindow(w display.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.windows[w]; !ok {
		return ResultInvalidHandle
	}

	delete(s.windows, w)

	return nil
}

// CreateFramebuffer implements display.Service, only single RGB565 buffers
// of the fatal screen size are supported.
func (s *Service) CreateFramebuffer(w display.Window, width, height uint32, format display.PixelFormat, buffers int) (f display.Framebuffer, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.fail("CreateFramebuffer"); err != nil {
		return
	}

	l, ok := s.windows[w]

	if !ok {
		return 0, ResultInvalidHandle
	}

	if width != fb.Width || height != fb.Height || format != display.PixelFormatRGB565 || buffers != 1 {
		return 0, fmt.Errorf("unsupported framebuffer %dx%d format:%d buffers:%d", width, height, format, buffers)
	}

	f = display.Framebuffer(s.handle())
	s.framebuffers[f] = &framebuffer{
		layer: l,
		pix:   make([]uint16, fb.Size),
	}

	return
}

// CloseFramebuffer implements display.Service.
func (s *Service) CloseFramebuffer(f display.Framebuffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.framebuffers[f]; !ok {
		return ResultInvalidHandle
	}

	delete(s.framebuffers, f)

	return nil
}

// Dequeue implements display.Service.
func (s *Service) Dequeue(f display.Framebuffer) ([]uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("Dequeue"); err != nil {
		return nil, err
	}

	fbuf, ok := s.framebuffers[f]

	if !ok {
		return nil, ResultInvalidHandle
	}

	if fbuf.dequeued {
		return nil, nil
	}

	fbuf.dequeued = true

	return fbuf.pix, nil
}

// Queue implements display.Service, the framebuffer layer is composed on
// the canvas.
func (s *Service) Queue(f display.Framebuffer) error {
	s.mu.Lock()

	if err := s.fail("Queue"); err != nil {
		s.mu.Unlock()
		return err
	}

	fbuf, ok := s.framebuffers[f]

	if !ok || !fbuf.dequeued {
		s.mu.Unlock()
		return ResultInvalidHandle
	}

	fbuf.dequeued = false

	ls, ok := s.layers[fbuf.layer]

	if !ok {
		s.mu.Unlock()
		return ResultInvalidHandle
	}

	screen := s.compose(fbuf, *ls)
	s.screen = screen
	s.presented++

	onPresent := s.OnPresent
	s.mu.Unlock()

	if onPresent != nil {
		onPresent(screen)
	}

	return nil
}

func (s *Service) compose(fbuf *framebuffer, ls LayerState) *image.RGBA {
	screen := image.NewRGBA(image.Rect(0, 0, int(s.Width), int(s.Height)))
	xdraw.Draw(screen, screen.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)

	src := (&fb.Buffer{Pix: fbuf.pix}).Linear()

	x := int(ls.X)
	y := int(ls.Y)
	dr := image.Rect(x, y, x+int(ls.Width), y+int(ls.Height))

	xdraw.NearestNeighbor.Scale(screen, dr, src, src.Bounds(), xdraw.Over, nil)

	return screen
}

// Screen returns the canvas of the last composition, nil before the first.
func (s *Service) Screen() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.screen
}

// Presented returns the number of compositions performed.
func (s *Service) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.presented
}

// Open returns the number of live handles, a connection counts as one.
func (s *Service) Open() (n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		n++
	}

	return n + len(s.displays) + len(s.layers) + len(s.windows) + len(s.framebuffers)
}

// ContentVisible returns whether other content is shown.
func (s *Service) ContentVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.contentVisible
}

// Output returns the state of a physical output.
func (s *Service) Output(name string) Output {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.outputs[name]; ok {
		return *o
	}

	return Output{}
}

// Layers returns the state of all live layers.
func (s *Service) Layers() (layers []LayerState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ls := range s.layers {
		layers = append(layers, *ls)
	}

	return
}
