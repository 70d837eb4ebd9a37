// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/usbarmory/GoTEE-fatal/fb"
	"github.com/usbarmory/GoTEE-fatal/logo"
	"github.com/usbarmory/GoTEE-fatal/text"
)

type printed struct {
	X     int
	Y     int
	Text  string
	Color fb.Color565
}

// recorder wraps a text cursor, recording every printed string with its
// position and color.
type recorder struct {
	*text.Cursor

	color fb.Color565
	out   []printed
}

func (r *recorder) SetColor(c fb.Color565) {
	r.color = c
	r.Cursor.SetColor(c)
}

func (r *recorder) record(s string) {
	r.out = append(r.out, printed{r.X(), r.Y(), s, r.color})
}

func (r *recorder) Print(s string) {
	r.record(s)
	r.Cursor.Print(s)
}

func (r *recorder) PrintLine(s string) {
	r.record(s)
	r.Cursor.PrintLine(s)
}

func (r *recorder) Printf(format string, a ...interface{}) {
	r.record(fmt.Sprintf(format, a...))
	r.Cursor.Printf(format, a...)
}

func (r *recorder) PrintfLine(format string, a ...interface{}) {
	r.record(fmt.Sprintf(format, a...))
	r.Cursor.PrintfLine(format, a...)
}

func (r *recorder) find(s string) (p printed, ok bool) {
	for _, p = range r.out {
		if p.Text == s {
			return p, true
		}
	}

	return
}

func (r *recorder) at(y int, s string) (p printed, ok bool) {
	for _, p = range r.out {
		if p.Y == y && p.Text == s {
			return p, true
		}
	}

	return
}

func basic7x13(float64) font.Face {
	return basicfont.Face7x13
}

func render(t *testing.T, ctx *CrashContext) (*fb.Buffer, *recorder) {
	t.Helper()

	buf := fb.NewBuffer()
	r := &recorder{}

	s := &Screen{
		NewPrinter: func(buf *fb.Buffer) Printer {
			r.Cursor = text.NewCursor(buf, basic7x13)
			return r
		},
	}

	s.Draw(buf, ctx)

	return buf, r
}

func TestDrawSummary(t *testing.T) {
	_, r := render(t, &CrashContext{
		ErrorCode: 0xe401,
		ProgramID: 0x0100000000001000,
		CPU:       &Aarch32Context{},
	})

	first := r.out[0]

	if first.X != MarginX || first.Y != MarginY {
		t.Errorf("summary starts at (%d, %d)", first.X, first.Y)
	}

	if first.Text != "Error Code: 2001-0114 (0xe401)\n" {
		t.Errorf("unexpected error message %q", first.Text)
	}

	for _, s := range []string{
		"Meaning: Invalid handle.",
		"Program: 0100000000001000",
		"Firmware: GoTEE",
	} {
		if _, ok := r.find(s); !ok {
			t.Errorf("missing %q", s)
		}
	}

	conf := DefaultConfig()

	desc, ok := r.find(conf.ErrorDescription)

	if !ok {
		t.Fatalf("missing error description")
	}

	heading, ok := r.find("Troubleshooting:")

	if !ok || heading.X != MarginX || heading.Y <= desc.Y {
		t.Errorf("troubleshooting heading: %+v", heading)
	}

	for _, link := range conf.Links {
		label, ok := r.find(link.Label + ": ")

		if ok && label.Y <= heading.Y {
			t.Errorf("link %q above heading", link.Label)
		}

		if !ok || label.Color != fb.White {
			t.Errorf("label %q: %+v", link.Label, label)
		}

		url, ok := r.find(link.URL)

		if !ok || url.Color != LinkColor || url.Y != label.Y || url.X != label.X+7*len(label.Text) {
			t.Errorf("link %q: %+v", link.URL, url)
		}
	}
}

func TestDrawRegisters(t *testing.T) {
	cpu := &Aarch64Context{PC: 0xffff000012345678}

	for i := range cpu.X {
		cpu.X[i] = 0x1111111100000000 + uint64(i)
		cpu.HasX[i] = i != 5
	}

	_, r := render(t, &CrashContext{CPU: cpu})

	title, ok := r.find("Arm64 Registers:")

	if !ok || title.X != RegistersX || title.Y != MarginY {
		t.Fatalf("title %+v", title)
	}

	for i, name := range aarch64GprNames {
		label, ok := r.find(name + ":")

		if !ok || label.X != RegistersX {
			t.Fatalf("register %s: %+v", name, label)
		}

		want := fmt.Sprintf("%016X", cpu.X[i])

		if i == 5 {
			want = strings.Repeat("0", 16)
		}

		val, ok := r.at(label.Y, want)

		if !ok || val.X != RegistersX+registerValueOffset {
			t.Errorf("register %s value %q not printed at value column", name, want)
		}
	}

	pc, ok := r.find("PC:")

	if !ok {
		t.Fatal("missing PC")
	}

	if _, ok := r.at(pc.Y, "FFFF000012345678"); !ok {
		t.Error("missing PC value")
	}

	sp, _ := r.find("SP:")

	if pc.Y != sp.Y+13 {
		t.Errorf("PC at y %d, SP at y %d", pc.Y, sp.Y)
	}
}

func TestDrawBacktraceLanes(t *testing.T) {
	cpu := &Aarch32Context{StartAddress: 0x80000000, StackTraceSize: 20}

	for i := range cpu.StackTrace {
		cpu.StackTrace[i] = 0x80010000 + uint32(i)*4
	}

	_, r := render(t, &CrashContext{CPU: cpu})

	const column = 950
	const lane = 148

	start, ok := r.find("Start Address:")

	if !ok || start.X != column || start.Y != MarginY {
		t.Fatalf("start address %+v", start)
	}

	if _, ok := r.at(MarginY+13, "80000000"); !ok {
		t.Error("missing start address value")
	}

	for n := 0; n < MaxStackTraceDepth; n++ {
		label := fmt.Sprintf("BT[%02d]:", n)
		p, ok := r.find(label)

		if n >= cpu.StackTraceSize {
			if ok {
				t.Errorf("%s printed beyond trace size", label)
			}

			continue
		}

		if !ok {
			t.Fatalf("missing %s", label)
		}

		wantX := column

		if n >= MaxStackTraceDepth/2 {
			wantX += lane
		}

		if p.X != wantX {
			t.Errorf("%s at x %d, want %d", label, p.X, wantX)
		}

		val, ok := r.at(p.Y, fmt.Sprintf("%08X", cpu.StackTrace[n]))

		if !ok || val.X != wantX+backtraceValueOffset {
			t.Errorf("%s value not at value column", label)
		}
	}

	a, _ := r.find("BT[00]:")
	b, _ := r.find("BT[16]:")

	if a.Y != b.Y {
		t.Errorf("lanes not side by side, %d != %d", a.Y, b.Y)
	}
}

func TestDrawFramebuffer(t *testing.T) {
	buf, _ := render(t, &CrashContext{CPU: &Aarch32Context{}})

	bg := logo.Background()

	for _, tt := range []struct {
		x, y int
		want fb.Color565
	}{
		{DividerX, DividerTop, fb.White},
		{DividerX, DividerBottom - 1, fb.White},
		{DividerX, DividerTop - 1, bg},
		{DividerX, DividerBottom, bg},
		{fb.Width - 1, fb.Height - 1, bg},
		{0, 0, bg},
	} {
		if got := buf.At565(tt.x, tt.y); got != tt.want {
			t.Errorf("(%d, %d) = %#04x, want %#04x", tt.x, tt.y, got, tt.want)
		}
	}

	px := logo.Pixels()
	y0 := fb.Height - logo.Height
	var got, want []fb.Color565

	for y := 0; y < logo.Height; y += 7 {
		for x := 0; x < logo.Width; x += 5 {
			got = append(got, buf.At565(MarginX+x, y0+y))
			want = append(want, px[y*logo.Width+x])
		}
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("logo mismatch (-want +got):\n%s", diff)
	}

	if buf.Pix[fb.Size-1] != uint16(bg) {
		t.Errorf("padding not filled")
	}
}
