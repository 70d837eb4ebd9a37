// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const outputLimit = 1024
const flushChr = 0x0a // \n

// Output represents the buffered log output of an execution context, flushed
// on each line to avoid interleaving with other contexts.
type Output struct {
	// Tag prefixes each line
	Tag string
	// Color selects the terminal escape color
	Color func(*term.EscapeCodes) []byte

	sync.Mutex
	buf bytes.Buffer
}

// WriteByte buffers a log character, full lines are written to the terminal
// when not nil, or to standard output otherwise.
func (o *Output) WriteByte(c byte, t *term.Terminal) {
	o.Lock()
	defer o.Unlock()

	if o.buf.Len() == 0 && len(o.Tag) > 0 {
		o.buf.WriteString(o.Tag)
	}

	o.buf.WriteByte(c)

	if c != flushChr && o.buf.Len() <= outputLimit {
		return
	}

	if t == nil {
		o.flush(os.Stdout)
		return
	}

	if o.Color != nil {
		t.Write(o.Color(t.Escape))
	}

	o.flush(t)

	if o.Color != nil {
		t.Write(t.Escape.Reset)
	}
}

func (o *Output) flush(w io.Writer) {
	w.Write(o.buf.Bytes())
	o.buf.Reset()
}
