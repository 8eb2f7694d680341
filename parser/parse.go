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

// Package parser implements a parser for stic source. It reads lines from a
// source.LineSource and outputs an *ast.File.
//
// Input indentation carries no meaning. Nesting is delimited by braces, and
// each line is classified by its first character after leading and trailing
// whitespace and any ";;" comment have been removed:
//
//      line      = tag | include | close | text | /* empty */ .
//      tag       = ( "%" name [ classes ] | classes ) attrs ( "{" | text | /* nothing */ ) .
//      classes   = "." class { "." class } .
//      include   = "@" module attrs [ "{" ] .
//      close     = "}" .
//      attrs     = [ "(" { attr [ "," ] } ")" ] .
//      attr      = attr_name ( ":" | "=" ) value .
//      value     = "'" { unicode_char } "'" | `"` { unicode_char } `"` | "$" ident | bare .
//
// A "{" opens a block which the following lines fill until the matching "}".
// The block of an include is read from the including file; the included
// file itself is only named by the tree, it is loaded by the generator.
// The include named CONTENT is the slot where a module places the block its
// includer passed to it.
package parser // import "akhil.cc/stic/parser"

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"akhil.cc/stic/ast"
	"akhil.cc/stic/scan"
	"akhil.cc/stic/source"
)

// ContentName is the module name of the content slot.
const ContentName = "CONTENT"

// Comment starts a comment running to the end of the line.
const Comment = ";;"

// ErrSyntax matches every *Error.
var ErrSyntax = errors.New("syntax error")

// ErrUnterminatedAttrs is returned by ParseAttrs when the line ends inside an attribute list.
var ErrUnterminatedAttrs = errors.New("unterminated attribute list")

// Error is a syntax error at a line of a document.
type Error struct {
	File string
	Line int
	Msg  string
	Err  error // cause, if any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *Error) Is(target error) bool {
	return target == ErrSyntax
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MustParse is like Parse but panics if the source cannot be parsed.
func MustParse(src source.LineSource) *ast.File {
	f, err := Parse(src)
	if err != nil {
		panic("Parse error: " + err.Error())
	}
	return f
}

// Parse reads src to the end and returns its syntax tree.
func Parse(src source.LineSource) (*ast.File, error) {
	p := &parser{src: src}
	f := &ast.File{Name: src.Name()}
	var err error
	f.List, _, err = p.stmts()
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ParseReader is like Parse for a document read from r.
func ParseReader(name string, r io.Reader) (*ast.File, error) {
	return Parse(source.NewReader(name, r))
}

// ParseFile parses the file name in fsys. The file is closed before ParseFile returns.
func ParseFile(fsys fs.FS, name string) (*ast.File, error) {
	src, err := source.Open(fsys, name)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return Parse(src)
}

type parser struct {
	src  source.LineSource
	open int
}

// stmts parses lines up to the end of input or a closing brace, and
// reports whether the brace was seen.
func (p *parser) stmts() ([]ast.Stmt, bool, error) {
	list := []ast.Stmt{}
	for p.src.Scan() {
		line := Clean(p.src.Text())
		if line == "" {
			continue
		}
		var (
			s   ast.Stmt
			err error
		)
		switch line[0] {
		case '.', '%':
			s, err = p.tag(line)
		case '@':
			s, err = p.include(line)
		case '}':
			if p.open == 0 {
				return nil, false, p.errorf(p.src.Line(), "unmatched }")
			}
			return list, true, nil
		default:
			s = &ast.Text{Line: p.src.Line(), Raw: line}
		}
		if err != nil {
			return nil, false, err
		}
		list = append(list, s)
	}
	return list, false, p.src.Err()
}

// body parses the block opened on line beg.
func (p *parser) body(beg int) ([]ast.Stmt, error) {
	p.open++
	list, closed, err := p.stmts()
	p.open--
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, p.errorf(beg, "unterminated block")
	}
	return list, nil
}

func (p *parser) tag(line string) (*ast.Tag, error) {
	t := &ast.Tag{Line: p.src.Line()}
	sc := scan.New(line)
	if sc.Head() == '%' {
		sc.Skip()
		t.Name = sc.While(scan.TagName)
	}
	if sc.Head() == '.' {
		sc.Skip()
		t.Classes = strings.FieldsFunc(sc.While(scan.ClassList), func(r rune) bool { return r == '.' })
	}
	var err error
	if t.Attrs, err = p.attrs(sc, t.Line); err != nil {
		return nil, err
	}
	sc.While(scan.Space)
	switch sc.Head() {
	case '{':
		if err := p.opening(sc, t.Line); err != nil {
			return nil, err
		}
		t.Form = ast.Block
		if t.Body, err = p.body(t.Line); err != nil {
			return nil, err
		}
	case scan.EOL:
		t.Form = ast.SelfClosing
	default:
		t.Form = ast.Inline
		t.Text = sc.Rest()
	}
	return t, nil
}

func (p *parser) include(line string) (ast.Stmt, error) {
	n := p.src.Line()
	sc := scan.New(line)
	sc.Skip() // drop at-sign
	module := sc.While(scan.ClassList)
	attrs, err := p.attrs(sc, n)
	if err != nil {
		return nil, err
	}
	sc.While(scan.Space)
	switch {
	case module == "":
		return nil, p.errorf(n, "missing module name after @")
	case module == ContentName:
		if !sc.AtEnd() {
			return nil, p.errorf(n, "unexpected %q after @%s", sc.Rest(), ContentName)
		}
		return &ast.Content{Line: n}, nil
	}
	inc := &ast.Include{Line: n, Module: module, Attrs: attrs}
	switch sc.Head() {
	case '{':
		if err := p.opening(sc, n); err != nil {
			return nil, err
		}
		inc.Block = true
		if inc.Body, err = p.body(n); err != nil {
			return nil, err
		}
	case scan.EOL:
	default:
		return nil, p.errorf(n, "trailing garbage after module inclusion: %q", sc.Rest())
	}
	return inc, nil
}

// opening drops the '{' under the cursor; nothing may follow it on the line.
func (p *parser) opening(sc *scan.Scanner, n int) error {
	sc.Skip()
	sc.While(scan.Space)
	if !sc.AtEnd() {
		return p.errorf(n, "unexpected %q after {", sc.Rest())
	}
	return nil
}

func (p *parser) attrs(sc *scan.Scanner, n int) ([]ast.Attr, error) {
	attrs, err := ParseAttrs(sc)
	if err != nil {
		return nil, &Error{File: p.src.Name(), Line: n, Msg: err.Error(), Err: err}
	}
	return attrs, nil
}

// ParseAttrs parses an optional parenthesized attribute list at the cursor.
// A name may be separated from its value by ':' or '='. When a name repeats,
// the later value replaces the earlier one.
func ParseAttrs(sc *scan.Scanner) ([]ast.Attr, error) {
	sc.While(scan.Space)
	if sc.Head() != '(' {
		return nil, nil
	}
	sc.Skip() // drop paren
	var attrs []ast.Attr
	for {
		sc.While(scan.In(" ,"))
		switch sc.Head() {
		case ')':
			sc.Skip()
			return attrs, nil
		case scan.EOL:
			return nil, ErrUnterminatedAttrs
		}
		name := strings.TrimSpace(sc.While(scan.Except(":=")))
		sc.Skip() // drop colon or equal sign
		sc.While(scan.Space)
		attrs = set(attrs, ast.Attr{Name: name, Value: ParseValue(sc)})
	}
}

func set(attrs []ast.Attr, a ast.Attr) []ast.Attr {
	for i := range attrs {
		if attrs[i].Name == a.Name {
			attrs[i].Value = a.Value
			return attrs
		}
	}
	return append(attrs, a)
}

// ParseValue parses one attribute value at the cursor. Quotes cannot be escaped.
func ParseValue(sc *scan.Scanner) ast.Value {
	switch q := sc.Head(); q {
	case '\'', '"':
		sc.Skip()
		s := sc.While(scan.Except(string(rune(q))))
		sc.Skip()
		return ast.Value{Kind: ast.Quoted, Text: s}
	case '$':
		sc.Skip()
		return ast.Value{Kind: ast.Variable, Text: sc.While(scan.Ident)}
	default:
		return ast.Value{Kind: ast.Bare, Text: sc.While(scan.Except(" )"))}
	}
}

// Clean trims a raw line and removes its comment.
func Clean(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.Index(line, Comment); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return line
}

func (p *parser) errorf(line int, format string, args ...interface{}) error {
	return &Error{File: p.src.Name(), Line: line, Msg: fmt.Sprintf(format, args...)}
}
