// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"fmt"

	"github.com/usbarmory/GoTEE-fatal/fb"
	"github.com/usbarmory/GoTEE-fatal/logo"
	"github.com/usbarmory/GoTEE-fatal/text"
)

// Screen layout
const (
	MarginX = 32
	MarginY = 64

	SummaryFontSize = 16
	DumpFontSize    = 14

	DividerX      = 660
	DividerTop    = 32
	DividerBottom = fb.Height - 32

	RegistersX = 675

	registerValueOffset  = 48
	backtraceValueOffset = 72
)

// LinkColor is the color of troubleshooting URLs.
const LinkColor fb.Color565 = 0x641f

// Printer is the interface to a text cursor, implemented by *text.Cursor.
type Printer interface {
	SetPosition(x, y int)
	X() int
	Y() int
	SetFontSize(size float64)
	SetColor(c fb.Color565)
	AddSpacingLines(n float64)
	Print(s string)
	PrintLine(s string)
	Printf(format string, a ...interface{})
	PrintfLine(format string, a ...interface{})
}

// Screen renders crash contexts on a framebuffer page.
type Screen struct {
	Config *Config

	// NewPrinter returns the cursor drawing on buf, when nil a
	// text.Cursor with Go Mono faces is used.
	NewPrinter func(buf *fb.Buffer) Printer
}

func (s *Screen) printer(buf *fb.Buffer) Printer {
	if s.NewPrinter != nil {
		return s.NewPrinter(buf)
	}

	return text.NewCursor(buf, text.Mono)
}

// Draw renders the fatal screen for the argument context.
func (s *Screen) Draw(buf *fb.Buffer, ctx *CrashContext) {
	conf := s.Config

	if conf == nil {
		conf = DefaultConfig()
	}

	buf.Fill(logo.Background())
	drawLogo(buf)

	p := s.printer(buf)
	p.SetColor(fb.White)

	drawSummary(p, conf, ctx)

	for y := DividerTop; y < DividerBottom; y++ {
		buf.Set565(DividerX, y, fb.White)
	}

	if ctx.CPU != nil {
		drawDump(p, ctx.CPU.dump())
	}
}

func drawLogo(buf *fb.Buffer) {
	px := logo.Pixels()
	y0 := fb.Height - logo.Height

	for y := 0; y < logo.Height; y++ {
		for x := 0; x < logo.Width; x++ {
			buf.Set565(MarginX+x, y0+y, px[y*logo.Width+x])
		}
	}
}

func drawSummary(p Printer, conf *Config, ctx *CrashContext) {
	code := ctx.ErrorCode

	p.SetPosition(MarginX, MarginY)
	p.SetFontSize(SummaryFontSize)

	p.Printf(conf.ErrorMessage, code.Module(), code.Description(), uint32(code))
	p.AddSpacingLines(0.5)
	p.PrintfLine("Meaning: %s", Meaning(code))
	p.AddSpacingLines(0.5)
	p.PrintfLine("Program: %016X", ctx.ProgramID)
	p.AddSpacingLines(0.5)
	p.PrintfLine("Firmware: %s", conf.FirmwareVersion)
	p.AddSpacingLines(1.5)

	p.Print(conf.ErrorDescription)
	p.AddSpacingLines(1.5)
	p.PrintLine("Troubleshooting:")
	p.AddSpacingLines(0.5)

	for i, link := range conf.Links {
		if i > 0 {
			p.AddSpacingLines(0.5)
		}

		p.Print(link.Label + ": ")
		p.SetColor(LinkColor)
		p.PrintLine(link.URL)
		p.SetColor(fb.White)
	}
}

func drawDump(p Printer, d *registerDump) {
	hex := fmt.Sprintf("%%0%dX", d.digits)

	p.SetFontSize(DumpFontSize)
	p.SetPosition(RegistersX, MarginY)
	p.PrintLine(d.title)
	p.AddSpacingLines(0.5)

	field := func(x int, name string, val uint64) {
		y := p.Y()
		p.SetPosition(x, y)
		p.Print(name)
		p.SetPosition(x+registerValueOffset, y)
		p.Printf(hex, val)
		p.SetPosition(x, y)
		p.AddSpacingLines(1)
	}

	for i, name := range d.names {
		field(RegistersX, name+":", d.values[i])
	}

	field(RegistersX, "PC:", d.pc)

	p.SetPosition(d.traceX, MarginY)
	p.PrintLine("Start Address:")
	p.PrintfLine(hex, d.start)
	p.AddSpacingLines(0.5)
	p.PrintLine("Backtrace:")

	half := MaxStackTraceDepth / 2

	for i := 0; i < half && i < len(d.trace); i++ {
		y := p.Y()

		for n := i; n < len(d.trace); n += half {
			x := d.traceX + (n/half)*d.laneWidth

			p.SetPosition(x, y)
			p.Printf("BT[%02d]:", n)
			p.SetPosition(x+backtraceValueOffset, y)
			p.Printf(hex, d.trace[n])
		}

		p.SetPosition(d.traceX, y)
		p.AddSpacingLines(1)
	}
}
