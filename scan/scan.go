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

// Package scan provides the single-line cursor that the stic parser is built on.
//
// Every lexical rule of the language is a run of characters accepted by one of
// the predicates below, consumed with Scanner.While, plus explicit calls to
// Skip to drop delimiters.
package scan // import "akhil.cc/stic/scan"

import "strings"

// EOL is returned by Head when the cursor is at the end of the line.
const EOL = -1

// Scanner is a cursor over one line of text.
type Scanner struct {
	s   string
	pos int
}

// New returns a Scanner positioned at the start of s.
func New(s string) *Scanner {
	return &Scanner{s: s}
}

// AtEnd reports whether the cursor is at or past the end of the line.
func (sc *Scanner) AtEnd() bool {
	return sc.pos >= len(sc.s)
}

// Skip advances the cursor by one character. It does nothing at the end of the line.
func (sc *Scanner) Skip() {
	if !sc.AtEnd() {
		sc.pos++
	}
}

// Rest returns the text from the cursor to the end of the line.
func (sc *Scanner) Rest() string {
	if sc.AtEnd() {
		return ""
	}
	return sc.s[sc.pos:]
}

// Head returns the character under the cursor, or EOL.
func (sc *Scanner) Head() int {
	if sc.AtEnd() {
		return EOL
	}
	return int(sc.s[sc.pos])
}

// While consumes characters as long as f accepts them and returns the run.
func (sc *Scanner) While(f func(byte) bool) string {
	beg := sc.pos
	for !sc.AtEnd() && f(sc.s[sc.pos]) {
		sc.pos++
	}
	return sc.s[beg:sc.pos]
}

// Pos returns the byte offset of the cursor.
func (sc *Scanner) Pos() int {
	return sc.pos
}

func alnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// Ident accepts variable name characters: [-_a-zA-Z0-9.]
func Ident(c byte) bool {
	return alnum(c) || c == '-' || c == '_' || c == '.'
}

// TagName accepts explicit tag name characters: [-_a-zA-Z0-9$]
func TagName(c byte) bool {
	return alnum(c) || c == '-' || c == '_' || c == '$'
}

// ClassList accepts class list and module name characters: [-_a-zA-Z0-9.$]
func ClassList(c byte) bool {
	return Ident(c) || c == '$'
}

// Space accepts the space character only.
func Space(c byte) bool {
	return c == ' '
}

// Not inverts f.
func Not(f func(byte) bool) func(byte) bool {
	return func(c byte) bool { return !f(c) }
}

// In accepts any of the characters in set.
func In(set string) func(byte) bool {
	return func(c byte) bool { return strings.IndexByte(set, c) >= 0 }
}

// Except accepts any character not in set.
func Except(set string) func(byte) bool {
	return Not(In(set))
}
