// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const crashMain = `package main

//go:noinline
func crash() {
	panic("crash")
}

func main() {
	crash()
}
`

// buildApplet cross compiles a small ARM executable, the test binary itself
// is linked without a symbol table.
func buildApplet(t *testing.T) []byte {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping executable build in short mode")
	}

	gobin := filepath.Join(runtime.GOROOT(), "bin", "go")

	if _, err := os.Stat(gobin); err != nil {
		if gobin, err = exec.LookPath("go"); err != nil {
			t.Skip("go tool not available")
		}
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "applet.elf")

	for name, data := range map[string]string{
		"go.mod":  "module applet\n\ngo 1.21\n",
		"main.go": crashMain,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0600); err != nil {
			t.Fatal(err)
		}
	}

	cmd := exec.Command(gobin, "build", "-o", out, ".")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GOOS=linux", "GOARCH=arm", "GOARM=7", "CGO_ENABLED=0", "GOFLAGS=")

	if res, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("could not build applet, %v\n%s", err, res)
	}

	buf, err := os.ReadFile(out)

	if err != nil {
		t.Fatal(err)
	}

	return buf
}

func TestLookupSym(t *testing.T) {
	s, err := NewSymbols(buildApplet(t))

	if err != nil {
		t.Fatal(err)
	}

	start, end, err := s.Text()

	if err != nil {
		t.Fatal(err)
	}

	if start == 0 || end <= start {
		t.Fatalf("invalid text range %#x-%#x", start, end)
	}

	sym, err := s.LookupSym("main.crash")

	if err != nil {
		t.Fatal(err)
	}

	if sym.Value < start || sym.Value >= end {
		t.Errorf("main.crash %#x outside text %#x-%#x", sym.Value, start, end)
	}

	l, err := s.PCToLine(sym.Value)

	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(l, "main.go:4") || !strings.HasSuffix(l, "main.crash") {
		t.Errorf("unexpected source location %q", l)
	}

	if _, err = s.LookupSym("util.no.such.symbol"); err == nil {
		t.Error("missing symbol found")
	}
}

func TestNewSymbolsInvalid(t *testing.T) {
	if _, err := NewSymbols([]byte("not an executable")); err == nil {
		t.Error("invalid executable accepted")
	}
}
