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

// Tests for parse.go
package parser_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"akhil.cc/stic/ast"
	"akhil.cc/stic/parser"
	"akhil.cc/stic/scan"
	"akhil.cc/stic/source"
	"github.com/sanity-io/litter"
)

type smallcase struct {
	in   string
	want []ast.Stmt
	werr string
}

var litCfg = litter.Options{
	Compact:           true,
	StripPackageNames: false,
	HidePrivateFields: false,
	Separator:         " ",
}

func run(t *testing.T, cases []smallcase) {
	t.Helper()
	for i, test := range cases {
		got, err := parser.ParseReader("doc.stic", strings.NewReader(test.in))
		var list []ast.Stmt
		if got != nil {
			list = got.List
		}
		es := ""
		if err != nil {
			es = err.Error()
		}
		if es != test.werr || (err == nil && !reflect.DeepEqual(test.want, list)) {
			t.Errorf("case %d, in %q,\nwant %s,\ngot %s,\nwant err %q,\ngot err %q", i, test.in, litCfg.Sdump(test.want), litCfg.Sdump(list), test.werr, es)
		}
	}
}

var tagSmall = []smallcase{
	{".note", []ast.Stmt{
		&ast.Tag{Line: 1, Classes: []string{"note"}, Form: ast.SelfClosing},
	}, ""},
	{"%p hello $name", []ast.Stmt{
		&ast.Tag{Line: 1, Name: "p", Form: ast.Inline, Text: "hello $name"},
	}, ""},
	{"%a.nav.$active (href: '/x', title=$t) Home", []ast.Stmt{
		&ast.Tag{
			Line:    1,
			Name:    "a",
			Classes: []string{"nav", "$active"},
			Attrs: []ast.Attr{
				{Name: "href", Value: ast.Value{Kind: ast.Quoted, Text: "/x"}},
				{Name: "title", Value: ast.Value{Kind: ast.Variable, Text: "t"}},
			},
			Form: ast.Inline,
			Text: "Home",
		},
	}, ""},
	{"  .box {  ;; a box\n    %p inside\n  }\n", []ast.Stmt{
		&ast.Tag{Line: 1, Classes: []string{"box"}, Form: ast.Block, Body: []ast.Stmt{
			&ast.Tag{Line: 2, Name: "p", Form: ast.Inline, Text: "inside"},
		}},
	}, ""},
	{"%ul {\n%li {\n}\n}", []ast.Stmt{
		&ast.Tag{Line: 1, Name: "ul", Form: ast.Block, Body: []ast.Stmt{
			&ast.Tag{Line: 2, Name: "li", Form: ast.Block, Body: []ast.Stmt{}},
		}},
	}, ""},
	{"..a..b", []ast.Stmt{
		&ast.Tag{Line: 1, Classes: []string{"a", "b"}, Form: ast.SelfClosing},
	}, ""},
	{"%br", []ast.Stmt{
		&ast.Tag{Line: 1, Name: "br", Form: ast.SelfClosing},
	}, ""},
}

func TestTag(t *testing.T) {
	run(t, tagSmall)
}

var textSmall = []smallcase{
	{"plain $x text ;; comment\n\n   \n;; only a comment", []ast.Stmt{
		&ast.Text{Line: 1, Raw: "plain $x text"},
	}, ""},
	{"", []ast.Stmt{}, ""},
}

func TestText(t *testing.T) {
	run(t, textSmall)
}

var includeSmall = []smallcase{
	{"@header (title: \"Hi $who\")", []ast.Stmt{
		&ast.Include{Line: 1, Module: "header", Attrs: []ast.Attr{
			{Name: "title", Value: ast.Value{Kind: ast.Quoted, Text: "Hi $who"}},
		}},
	}, ""},
	{"@layout {\n%strong Hi\n}\n%p after", []ast.Stmt{
		&ast.Include{Line: 1, Module: "layout", Block: true, Body: []ast.Stmt{
			&ast.Tag{Line: 2, Name: "strong", Form: ast.Inline, Text: "Hi"},
		}},
		&ast.Tag{Line: 4, Name: "p", Form: ast.Inline, Text: "after"},
	}, ""},
	{"%main {\n@CONTENT\n}", []ast.Stmt{
		&ast.Tag{Line: 1, Name: "main", Form: ast.Block, Body: []ast.Stmt{
			&ast.Content{Line: 2},
		}},
	}, ""},
	{"@parts.$kind", []ast.Stmt{
		&ast.Include{Line: 1, Module: "parts.$kind"},
	}, ""},
}

func TestInclude(t *testing.T) {
	run(t, includeSmall)
}

var errorSmall = []smallcase{
	{"}", nil, "doc.stic:1: unmatched }"},
	{"%p {\n}\n}", nil, "doc.stic:3: unmatched }"},
	{"%div {\n%p x\n", nil, "doc.stic:1: unterminated block"},
	{"@m {\n", nil, "doc.stic:1: unterminated block"},
	{"@m junk", nil, `doc.stic:1: trailing garbage after module inclusion: "junk"`},
	{"@CONTENT {\n}", nil, `doc.stic:1: unexpected "{" after @CONTENT`},
	{"%p { text\n}", nil, `doc.stic:1: unexpected "text" after {`},
	{"\n\n%a (href: 'x'", nil, "doc.stic:3: unterminated attribute list"},
	{"@ (a: 1)", nil, "doc.stic:1: missing module name after @"},
}

func TestErrors(t *testing.T) {
	run(t, errorSmall)
	for _, test := range errorSmall {
		_, err := parser.ParseReader("doc.stic", strings.NewReader(test.in))
		var perr *parser.Error
		if !errors.Is(err, parser.ErrSyntax) || !errors.As(err, &perr) {
			t.Errorf("in %q: got %v, want a syntax error", test.in, err)
		}
	}
}

type attrcase struct {
	in   string
	want []ast.Attr
	rest string
	werr error
}

var attrSmall = []attrcase{
	{"(a: 'x', b=$y)", []ast.Attr{
		{Name: "a", Value: ast.Value{Kind: ast.Quoted, Text: "x"}},
		{Name: "b", Value: ast.Value{Kind: ast.Variable, Text: "y"}},
	}, "", nil},
	{"  (id: main, class=\"a b\") text", []ast.Attr{
		{Name: "id", Value: ast.Value{Kind: ast.Bare, Text: "main,"}},
		{Name: "class", Value: ast.Value{Kind: ast.Quoted, Text: "a b"}},
	}, " text", nil},
	{"(x: 1, x: 2, y: 3)", []ast.Attr{
		{Name: "x", Value: ast.Value{Kind: ast.Bare, Text: "2,"}},
		{Name: "y", Value: ast.Value{Kind: ast.Bare, Text: "3"}},
	}, "", nil},
	{"(alt: \"it's\")", []ast.Attr{
		{Name: "alt", Value: ast.Value{Kind: ast.Quoted, Text: "it's"}},
	}, "", nil},
	// a bare value runs to the next space or ')', commas included
	{"(a: x,y)", []ast.Attr{
		{Name: "a", Value: ast.Value{Kind: ast.Bare, Text: "x,y"}},
	}, "", nil},
	{"(a : 1)", []ast.Attr{
		{Name: "a", Value: ast.Value{Kind: ast.Bare, Text: "1"}},
	}, "", nil},
	{"()", nil, "", nil},
	{"no attrs", nil, "no attrs", nil},
	{"(a: 1", nil, "", parser.ErrUnterminatedAttrs},
}

func TestParseAttrs(t *testing.T) {
	for i, test := range attrSmall {
		sc := scan.New(test.in)
		got, err := parser.ParseAttrs(sc)
		if err != test.werr {
			t.Errorf("case %d, in %q: want err %v, got %v", i, test.in, test.werr, err)
			continue
		}
		if err != nil {
			continue
		}
		if !reflect.DeepEqual(test.want, got) || sc.Rest() != test.rest {
			t.Errorf("case %d, in %q,\nwant %s rest %q,\ngot %s rest %q", i, test.in, litCfg.Sdump(test.want), test.rest, litCfg.Sdump(got), sc.Rest())
		}
	}
}

func TestParseValue(t *testing.T) {
	for _, test := range []struct {
		in   string
		want ast.Value
	}{
		{"'single $x'", ast.Value{Kind: ast.Quoted, Text: "single $x"}},
		{`"double"`, ast.Value{Kind: ast.Quoted, Text: "double"}},
		{"$a.b-c)", ast.Value{Kind: ast.Variable, Text: "a.b-c"}},
		{"bare$x)", ast.Value{Kind: ast.Bare, Text: "bare$x"}},
	} {
		got := parser.ParseValue(scan.New(test.in))
		if got != test.want {
			t.Errorf("in %q: want %s, got %s", test.in, litCfg.Sdump(test.want), litCfg.Sdump(got))
		}
	}
}

func TestClean(t *testing.T) {
	for in, want := range map[string]string{
		"  %p hi  ":       "%p hi",
		"text ;; comment": "text",
		";; whole line":   "",
		"\t}\t":           "}",
	} {
		if got := parser.Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWalk(t *testing.T) {
	f := parser.MustParse(source.NewReader("doc.stic", strings.NewReader("%div {\n@nav\n%p {\n@footer {\nx\n}\n}\n}\n@CONTENT")))
	var modules []string
	_, err := ast.Walk(f, func(n ast.Node) (ast.Node, error) {
		if inc, ok := n.(*ast.Include); ok {
			modules = append(modules, inc.Module)
		}
		return n, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(modules) != "[nav footer]" {
		t.Errorf("got modules %v", modules)
	}
}

func TestPos(t *testing.T) {
	f := parser.MustParse(source.NewReader("doc.stic", strings.NewReader("text\n\n%p {\n@CONTENT\n}\n@m")))
	var got []int
	for _, s := range f.List {
		got = append(got, s.Pos())
	}
	if fmt.Sprint(got) != "[1 3 6]" {
		t.Errorf("got positions %v", got)
	}
	if pos := f.List[1].(*ast.Tag).Body[0].Pos(); pos != 4 {
		t.Errorf("got content position %d", pos)
	}
}
