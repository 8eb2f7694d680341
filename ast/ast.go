// Package ast declares the types used to represent a parsed stic document.
//
// Names, classes, attribute values and text are kept exactly as written.
// Variable substitution happens when the tree is generated, because the
// bindings in effect depend on where a module is included from.
package ast // import "akhil.cc/stic/ast"

// Node = *File | *Tag | *Text | *Include | *Content
type Node interface {
	node()
}

// Stmt = *Tag | *Text | *Include | *Content
type Stmt interface {
	Node
	stmt()
	Pos() int
}

// File is a parsed document or module.
type File struct {
	Name string
	List []Stmt
}

// Form tells how a tag is written out.
type Form int

const (
	SelfClosing Form = iota // <p />
	Inline                  // <p>text</p>
	Block                   // <p> ... </p>
)

// Tag is a line starting with '%' or '.'.
type Tag struct {
	Line    int
	Name    string   // explicit name after '%', may be empty
	Classes []string // class segments after '.'
	Attrs   []Attr
	Form    Form
	Text    string // Inline
	Body    []Stmt // Block
}

// Text is a line emitted as is, after substitution.
type Text struct {
	Line int
	Raw  string
}

// Include is an '@module' line. When Block is set, Body holds the lines
// between the '{' and its matching '}' in the including file.
type Include struct {
	Line   int
	Module string
	Attrs  []Attr
	Block  bool
	Body   []Stmt
}

// Content is an '@CONTENT' line.
type Content struct {
	Line int
}

// Attr is one name/value pair of an attribute list.
type Attr struct {
	Name  string
	Value Value
}

// Value is an unresolved attribute value.
type Value struct {
	Kind VKind
	Text string
}

// VKind is the lexical kind of a Value.
type VKind int

const (
	Bare     VKind = iota // taken literally
	Quoted                // substituted
	Variable              // looked up, Text is the name
)

func (*File) node()    {}
func (*Tag) node()     {}
func (*Text) node()    {}
func (*Include) node() {}
func (*Content) node() {}

func (*Tag) stmt()     {}
func (*Text) stmt()    {}
func (*Include) stmt() {}
func (*Content) stmt() {}

func (t *Tag) Pos() int     { return t.Line }
func (t *Text) Pos() int    { return t.Line }
func (i *Include) Pos() int { return i.Line }
func (c *Content) Pos() int { return c.Line }

// Walk calls f on n and then walks the children of the node f returned.
// A nil statement returned from f removes that statement from its list.
func Walk(n Node, f Walker) (Node, error) {
	if n == nil {
		return nil, nil
	}
	nn, e := f(n)
	if e != nil {
		return n, e
	}
	n = nn
	switch t := n.(type) {
	case *File:
		t.List, e = walkList(t.List, f)
	case *Tag:
		t.Body, e = walkList(t.Body, f)
	case *Include:
		t.Body, e = walkList(t.Body, f)
	}
	return n, e
}

func walkList(list []Stmt, f Walker) ([]Stmt, error) {
	if len(list) == 0 {
		return list, nil
	}
	out := make([]Stmt, 0, len(list))
	for _, s := range list {
		n, e := Walk(s, f)
		if e != nil {
			return list, e
		}
		if n != nil {
			out = append(out, n.(Stmt))
		}
	}
	return out, nil
}

// Walker is called by Walk for every node.
type Walker func(Node) (Node, error)
