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

// Package tags maps class names to the HTML tag a stic element gets when its
// tag name is not written out.
//
// A mapping file has one entry per line: a class name and a tag name,
// separated by white space and split according to the Bourne shell's word
// splitting rules. Blank lines and lines starting with '#' are skipped. A
// class without a tag leaves that class unmapped, and further words on a
// line are ignored.
//
//	nav      nav
//	note     span
//	"title"  h1
package tags // import "akhil.cc/stic/tags"

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	sq "github.com/kballard/go-shellquote"
)

// Default is the tag of unmapped classes.
const Default = "div"

// Mapping maps class names to tag names. It is read only once loaded.
type Mapping map[string]string

// Tag returns the tag for class.
func (m Mapping) Tag(class string) string {
	if t, ok := m[class]; ok && t != "" {
		return t
	}
	return Default
}

// Load reads a mapping in the line format.
func Load(r io.Reader) (Mapping, error) {
	m := make(Mapping)
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		words, err := sq.Split(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", n, err)
		}
		if len(words) < 2 {
			continue
		}
		m[words[0]] = words[1]
	}
	return m, sc.Err()
}

// LoadYAML reads a mapping written as a YAML map of class names to tag names.
func LoadYAML(r io.Reader) (Mapping, error) {
	m := make(Mapping)
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && err != io.EOF {
		return nil, err
	}
	for class, tag := range m {
		if tag == "" {
			delete(m, class)
		}
	}
	return m, nil
}

// LoadFile reads the mapping file name. Files ending in .yaml or .yml are
// read with LoadYAML, all others with Load.
func LoadFile(name string) (Mapping, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	load := Load
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		load = LoadYAML
	}
	m, err := load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}
