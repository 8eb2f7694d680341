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

// Package source provides the line sources the stic parser reads from.
//
// A line source is consumed destructively: once a line has been returned it
// cannot be read again. The parser hands the same source down its recursion,
// so a block nested in an inclusion is read from the including file and
// reading continues right after the block's closing brace.
package source // import "akhil.cc/stic/source"

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
)

// MaxLine is the longest line a source accepts.
const MaxLine = 1 << 20

// LineSource produces the lines of one document.
type LineSource interface {
	// Scan advances to the next line. It returns false at the end of the
	// input or on a read error, which Err then reports.
	Scan() bool
	// Text returns the line read by the last call to Scan, without its newline.
	Text() string
	// Line returns the 1-based number of the line read by the last call to Scan.
	Line() int
	Err() error
	// Name identifies the document in diagnostics.
	Name() string
}

// Reader is a LineSource over an io.Reader.
type Reader struct {
	name string
	sc   *bufio.Scanner
	line int
}

// NewReader returns a LineSource reading lines from r.
func NewReader(name string, r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxLine)
	return &Reader{name: name, sc: sc}
}

func (r *Reader) Scan() bool {
	if !r.sc.Scan() {
		return false
	}
	r.line++
	return true
}

func (r *Reader) Text() string { return r.sc.Text() }
func (r *Reader) Line() int    { return r.line }
func (r *Reader) Name() string { return r.name }

func (r *Reader) Err() error {
	if err := r.sc.Err(); err != nil {
		return fmt.Errorf("%s:%d: %w", r.name, r.line+1, err)
	}
	return nil
}

// File is a LineSource backed by an open file. It must be closed.
type File struct {
	*Reader
	f fs.File
}

// Open opens name in fsys as a line source.
func Open(fsys fs.FS, name string) (*File, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{Reader: NewReader(name, f), f: f}, nil
}

func (f *File) Close() error {
	return f.f.Close()
}
