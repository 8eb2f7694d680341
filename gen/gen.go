// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package gen

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMismatch reports a closing tag that does not match the innermost open
// tag. It means the generator is broken, not the document.
var ErrMismatch = errors.New("internal error: mismatched closing tag")

// DefaultIndent is the indentation added per nesting level.
const DefaultIndent = "  "

type stickyCountWriter struct {
	n   int64
	err error
	w   io.Writer
}

func (c *stickyCountWriter) Write(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err = c.w.Write(p)
	c.err = err
	c.n += int64(n)
	return
}

// Emitter writes output lines indented by the depth of open tags.
type Emitter struct {
	Indent string
	cw     *stickyCountWriter
	open   []string
}

// NewEmitter returns an Emitter writing to w with DefaultIndent.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{Indent: DefaultIndent, cw: &stickyCountWriter{w: w}}
}

// Line writes text on a line of its own at the current depth.
func (e *Emitter) Line(text string) {
	var b strings.Builder
	for range e.open {
		b.WriteString(e.Indent)
	}
	b.WriteString(text)
	b.WriteByte('\n')
	io.WriteString(e.cw, b.String())
}

// Open writes text and indents the following lines one level deeper until
// name is closed.
func (e *Emitter) Open(name, text string) {
	e.Line(text)
	e.open = append(e.open, name)
}

// Close ends the innermost open tag, which must be name, and writes its
// closing tag.
func (e *Emitter) Close(name string) error {
	if len(e.open) == 0 {
		return fmt.Errorf("%w: </%s> without open tag", ErrMismatch, name)
	}
	top := e.open[len(e.open)-1]
	if top != name {
		return fmt.Errorf("%w: <%s> closed by </%s>", ErrMismatch, top, name)
	}
	e.open = e.open[:len(e.open)-1]
	e.Line("</" + name + ">")
	return nil
}

// Depth returns the number of open tags.
func (e *Emitter) Depth() int {
	return len(e.open)
}

// Err returns the first write error.
func (e *Emitter) Err() error {
	return e.cw.err
}

// Written returns the number of bytes written.
func (e *Emitter) Written() int64 {
	return e.cw.n
}
