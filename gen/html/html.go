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

// Package html converts a parsed stic document into indented HTML.
//
// Output starts with a <!DOCTYPE html> line. Every line of output is indented
// by the number of enclosing tag blocks; the indentation of the source is
// never looked at.
//
// Statements correspond to the following output:
// 	Tag (block)                 <name class="..." attr="...">, body, </name>
// 	Tag (inline)                <name ...>text</name>
// 	Tag (self-closing)          <name ... />
// 	Text                        the line with variables substituted
// 	Include                     the whole included module, at the current depth
// 	Content                     the block the including document passed in
//
// A tag without an explicit name takes the name its first class maps to,
// or div.
package html // import "akhil.cc/stic/gen/html"

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"akhil.cc/stic/ast"
	"akhil.cc/stic/gen"
	"akhil.cc/stic/parser"
	"akhil.cc/stic/scope"
	"akhil.cc/stic/tags"
)

// Doctype is the first line of every document.
const Doctype = "<!DOCTYPE html>"

// DefaultExt is appended to module names to find their files.
const DefaultExt = ".stic"

// DefaultMaxDepth bounds the nesting of includes and content blocks.
const DefaultMaxDepth = 64

// ErrDepth is returned when includes nest deeper than MaxDepth.
var ErrDepth = errors.New("maximum include depth exceeded")

// ErrNoModules is returned for an include when the generator has no FS.
var ErrNoModules = errors.New("no module directory")

// Generator represents a non-reusable HTML output generator for an *ast.File.
type Generator struct {
	// Stdout receives the HTML output.
	Stdout io.Writer

	// FS holds the module files named by includes.
	FS fs.FS
	// Ext is appended to module names. It defaults to DefaultExt.
	Ext string
	// Tags maps classes to tag names.
	Tags tags.Mapping
	// Indent is the indentation unit. It defaults to gen.DefaultIndent.
	Indent string
	// Vars are the bindings of the outermost scope.
	Vars map[string]string
	// MaxDepth defaults to DefaultMaxDepth.
	MaxDepth int
	// Logger receives debug messages about module loading. It may be nil.
	Logger *slog.Logger

	ctx      context.Context
	file     *ast.File
	waitdone chan error

	m     sync.Mutex
	pipes []*io.PipeWriter

	em      *gen.Emitter
	stack   scope.Stack
	modules map[string]*ast.File
	depth   int
}

// Gen returns the Generator struct to convert the given file into HTML output.
//
// It sets only the file in the returned structure.
func Gen(file *ast.File) *Generator {
	return &Generator{ctx: context.TODO(), file: file}
}

// GenContext is like Gen but includes a context.
//
// The provided context is used to halt HTML generation between statements.
func GenContext(ctx context.Context, file *ast.File) *Generator {
	if ctx == nil {
		panic("nil context")
	}
	return &Generator{ctx: ctx, file: file}
}

// Start starts the generator but does not wait for it to complete.
func (g *Generator) Start() error {
	if g.waitdone != nil {
		return fmt.Errorf("already started")
	}
	if g.Stdout == nil {
		g.Stdout = io.Discard
	}
	g.waitdone = make(chan error, 1)
	go func() {
		err := g.gen()
		g.m.Lock()
		for _, p := range g.pipes {
			p.CloseWithError(err)
		}
		g.pipes = nil
		g.m.Unlock()
		g.waitdone <- err
	}()
	return nil
}

// Wait waits for the generator to complete and returns its error.
// It is an error to call Wait before Start has been called.
func (g *Generator) Wait() error {
	if g.waitdone == nil {
		return fmt.Errorf("not started")
	}
	return <-g.waitdone
}

// Run starts the generator and waits for it to complete, returning
// any errors enountered.
func (g *Generator) Run() error {
	if err := g.Start(); err != nil {
		return err
	}
	return g.Wait()
}

// StdoutPipe returns a pipe that is connected to the generator's
// standard output. The pipe is closed when generation ends; a generation
// error is returned from reads of the pipe.
//
// The pipe must be read while the generator runs, since writes block.
func (g *Generator) StdoutPipe() (io.Reader, error) {
	if g.Stdout != nil {
		return nil, fmt.Errorf("Stdout already set")
	}
	pr, pw := io.Pipe()
	g.Stdout = pw
	g.m.Lock()
	g.pipes = append(g.pipes, pw)
	g.m.Unlock()
	return pr, nil
}

// Output runs the generator and returns its standard output.
func (g *Generator) Output() ([]byte, error) {
	if g.Stdout != nil {
		return nil, fmt.Errorf("Stdout already set")
	}
	var stdout bytes.Buffer
	g.Stdout = &stdout
	err := g.Run()
	return stdout.Bytes(), err
}

func (g *Generator) gen() error {
	if g.ctx == nil {
		g.ctx = context.Background()
	}
	g.em = gen.NewEmitter(g.Stdout)
	if g.Indent != "" {
		g.em.Indent = g.Indent
	}
	g.modules = make(map[string]*ast.File)
	g.em.Line(Doctype)
	err := g.stack.With(scope.Values(g.Vars), func() error {
		return g.stmts(g.file.Name, g.file.List)
	})
	if err != nil {
		return err
	}
	g.log().Debug("generated", "file", g.file.Name, "bytes", g.em.Written())
	return g.em.Err()
}

func (g *Generator) stmts(file string, list []ast.Stmt) error {
	for _, s := range list {
		select {
		case <-g.ctx.Done():
			return g.ctx.Err()
		default:
		}
		if err := g.em.Err(); err != nil {
			return err
		}
		var err error
		switch t := s.(type) {
		case *ast.Text:
			g.em.Line(g.stack.Substitute(t.Raw))
		case *ast.Tag:
			err = g.tag(file, t)
		case *ast.Include:
			err = g.include(file, t)
		case *ast.Content:
			err = g.content(file, t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) tag(file string, t *ast.Tag) error {
	classes := make([]string, 0, len(t.Classes))
	for _, c := range t.Classes {
		if c = g.stack.Substitute(c); c != "" {
			classes = append(classes, c)
		}
	}
	name := g.stack.Substitute(t.Name)
	if name == "" && len(classes) > 0 {
		name = g.Tags.Tag(classes[0])
	}
	if name == "" {
		name = tags.Default
	}
	var b strings.Builder
	b.WriteString("<" + name)
	if len(classes) > 0 {
		fmt.Fprintf(&b, " class=\"%s\"", strings.Join(classes, " "))
	}
	for _, a := range t.Attrs {
		fmt.Fprintf(&b, " %s=\"%s\"", a.Name, g.stack.Resolve(a.Value))
	}
	switch t.Form {
	case ast.SelfClosing:
		g.em.Line(b.String() + " />")
	case ast.Inline:
		g.em.Line(b.String() + ">" + g.stack.Substitute(t.Text) + "</" + name + ">")
	case ast.Block:
		g.em.Open(name, b.String()+">")
		err := g.stack.Block(func() error {
			return g.stmts(file, t.Body)
		})
		if err != nil {
			return err
		}
		return g.em.Close(name)
	}
	return nil
}

func (g *Generator) include(file string, inc *ast.Include) error {
	if err := g.enter(file, inc.Pos()); err != nil {
		return err
	}
	defer g.leave()
	frame := make(scope.Frame, len(inc.Attrs)+1)
	for _, a := range inc.Attrs {
		frame[a.Name] = scope.Binding{Value: g.stack.Resolve(a.Value)}
	}
	if inc.Block {
		frame[scope.ContentKey] = scope.Binding{Producer: g.stack.Producer(file, inc.Body)}
	}
	mod, err := g.module(g.stack.Substitute(inc.Module) + g.ext())
	if err != nil {
		return fmt.Errorf("%s:%d: %w", file, inc.Pos(), err)
	}
	return g.stack.With(frame, func() error {
		return g.stmts(mod.Name, mod.List)
	})
}

func (g *Generator) content(file string, c *ast.Content) error {
	p, err := g.stack.Content()
	if err != nil {
		return &parser.Error{File: file, Line: c.Pos(), Msg: err.Error(), Err: err}
	}
	if err := g.enter(file, c.Pos()); err != nil {
		return err
	}
	defer g.leave()
	g.log().Debug("content", "from", p.Name, "into", file, "line", c.Pos())
	return p.Invoke(&g.stack, func(body []ast.Stmt) error {
		return g.stmts(p.Name, body)
	})
}

func (g *Generator) enter(file string, line int) error {
	limit := g.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if g.depth >= limit {
		return fmt.Errorf("%s:%d: %w (%d)", file, line, ErrDepth, limit)
	}
	g.depth++
	return nil
}

func (g *Generator) leave() {
	g.depth--
}

// module returns the parsed module file name, reading it on first use.
func (g *Generator) module(name string) (*ast.File, error) {
	if f, ok := g.modules[name]; ok {
		g.log().Debug("module cached", "name", name)
		return f, nil
	}
	if g.FS == nil {
		return nil, fmt.Errorf("%w for module %q", ErrNoModules, name)
	}
	f, err := parser.ParseFile(g.FS, name)
	if err != nil {
		return nil, err
	}
	g.log().Debug("module loaded", "name", name, "statements", len(f.List))
	g.modules[name] = f
	return f, nil
}

func (g *Generator) ext() string {
	if g.Ext == "" {
		return DefaultExt
	}
	return g.Ext
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (g *Generator) log() *slog.Logger {
	if g.Logger == nil {
		return discard
	}
	return g.Logger
}
