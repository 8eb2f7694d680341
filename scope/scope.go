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

// Package scope implements the stack of variable bindings a stic document is
// generated under.
//
// Every inclusion, content invocation and tag block pushes exactly one frame
// and pops it when it is done. Lookups walk the stack from the innermost
// frame outwards; names bound nowhere resolve to the empty string.
package scope // import "akhil.cc/stic/scope"

import (
	"errors"
	"fmt"
	"regexp"

	"akhil.cc/stic/ast"
)

// ContentKey is the name a content producer is bound under. It contains
// spaces so no variable reference can spell it.
const ContentKey = " CONTENT "

// ErrNoContent is returned by Content when no frame binds a producer.
var ErrNoContent = errors.New("@CONTENT used outside of a module invoked with a block")

// ErrNotValue is the panic value wrapped when a producer is looked up as a string.
var ErrNotValue = errors.New("content producer used as a value")

// Binding is either a string value or a content producer.
type Binding struct {
	Value    string
	Producer *Producer
}

// Frame holds the bindings of one scope. A frame must not be changed once it
// has been pushed.
type Frame map[string]Binding

// Values returns a frame binding each key of m to its string value.
func Values(m map[string]string) Frame {
	f := make(Frame, len(m))
	for k, v := range m {
		f[k] = Binding{Value: v}
	}
	return f
}

// Producer is a block of an including document together with the frame that
// was innermost where the block was written. Invoking it generates the block
// at the place the included module asks for it.
type Producer struct {
	Name  string // document the block was read from
	Body  []ast.Stmt
	Frame Frame
	// Outer is the producer @CONTENT stood for where the block was written,
	// or nil if there was none.
	Outer *Producer
}

// Producer returns a producer of body capturing the innermost frame and
// the content producer in effect on s.
func (s *Stack) Producer(name string, body []ast.Stmt) *Producer {
	outer, _ := s.Content()
	return &Producer{Name: name, Body: body, Frame: s.Capture(), Outer: outer}
}

// Invoke pushes the captured frame on s and runs gen over the block. Within
// the block, Content returns p.Outer, or ErrNoContent if it is nil.
func (p *Producer) Invoke(s *Stack, gen func([]ast.Stmt) error) error {
	f := make(Frame, len(p.Frame)+1)
	for k, b := range p.Frame {
		f[k] = b
	}
	f[ContentKey] = Binding{Producer: p.Outer}
	return s.With(f, func() error {
		return gen(p.Body)
	})
}

type entry struct {
	frame Frame
	block bool
}

// Stack is a stack of frames.
type Stack struct {
	frames []entry
}

// Depth returns the number of frames on the stack.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// With pushes f, calls fn and pops f again, however fn returns.
func (s *Stack) With(f Frame, fn func() error) error {
	return s.with(entry{frame: f}, fn)
}

// Block is like With for the empty frame of a tag block. Block frames are
// skipped by Capture.
func (s *Stack) Block(fn func() error) error {
	return s.with(entry{block: true}, fn)
}

func (s *Stack) with(e entry, fn func() error) error {
	s.frames = append(s.frames, e)
	n := len(s.frames)
	defer func() {
		s.frames[n-1] = entry{}
		s.frames = s.frames[:n-1]
	}()
	return fn()
}

// Capture returns the innermost frame pushed by With.
func (s *Stack) Capture() Frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if !s.frames[i].block {
			return s.frames[i].frame
		}
	}
	return nil
}

func (s *Stack) binding(name string) (Binding, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].frame[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Lookup returns the value bound to name, or "" if there is none.
// It panics if name is bound to a producer.
func (s *Stack) Lookup(name string) string {
	b, _ := s.binding(name)
	if b.Producer != nil {
		panic(fmt.Errorf("%w: %q", ErrNotValue, name))
	}
	return b.Value
}

// Content returns the nearest content producer. A frame binding the content
// name to no producer hides the frames below it.
func (s *Stack) Content() (*Producer, error) {
	b, ok := s.binding(ContentKey)
	if !ok || b.Producer == nil {
		return nil, ErrNoContent
	}
	return b.Producer, nil
}

var varRef = regexp.MustCompile(`\$[-_a-zA-Z0-9.]+`)

// Substitute replaces every variable reference in text with its value. The
// inserted values are not scanned again.
func (s *Stack) Substitute(text string) string {
	return varRef.ReplaceAllStringFunc(text, func(ref string) string {
		return s.Lookup(ref[1:])
	})
}

// Resolve returns the string an attribute value stands for.
func (s *Stack) Resolve(v ast.Value) string {
	switch v.Kind {
	case ast.Quoted:
		return s.Substitute(v.Text)
	case ast.Variable:
		return s.Lookup(v.Text)
	default:
		return v.Text
	}
}
