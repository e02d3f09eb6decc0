// Package markdown holds the markdown primitives shared by the analyzers.
//
// The checkers work line by line with small regular expressions, mirroring how
// authors read a guide: a heading is a line of `#` markers, a link is `[text](target)`.
// Goldmark is used where a real parse matters, such as resolving a document title.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is a section heading found by the goldmark parser.
type Heading struct {
	Level int
	Text  string
}

// Outline parses a markdown body and returns its ATX and setext headings in order.
func Outline(body []byte) []Heading {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var out []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok {
			out = append(out, Heading{Level: h.Level, Text: strings.TrimSpace(plainText(h, body))})
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return out
}

// Title returns the text of the first level-one heading, or "" if there is none.
func Title(body []byte) string {
	for _, h := range Outline(body) {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}

// plainText concatenates the literal text below n.
func plainText(n gmast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *gmast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(node.Value)
		default:
			buf.WriteString(plainText(c, source))
		}
	}
	return buf.String()
}
