package parser

import (
	"fmt"
	"strings"
)

func (t token) is(kind tokKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) isKeyword(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

// cursor walks a token slice. Reading past the end yields the zero token.
type cursor struct {
	toks []token
	pos  int
}

func (c *cursor) done() bool { return c.pos >= len(c.toks) }

func (c *cursor) peek() token {
	if c.done() {
		return token{}
	}
	return c.toks[c.pos]
}

func (c *cursor) next() token {
	t := c.peek()
	if !c.done() {
		c.pos++
	}
	return t
}

// at returns a cursor over the same tokens positioned at i.
func (c *cursor) at(i int) *cursor {
	return &cursor{toks: c.toks, pos: i}
}

func (c *cursor) peekKeywords(kws ...string) bool {
	for i, kw := range kws {
		p := c.pos + i
		if p >= len(c.toks) || !c.toks[p].isKeyword(kw) {
			return false
		}
	}
	return true
}

func (c *cursor) acceptKeywords(kws ...string) bool {
	if !c.peekKeywords(kws...) {
		return false
	}
	c.pos += len(kws)
	return true
}

func (c *cursor) acceptPunct(p string) bool {
	if c.peek().is(tokPunct, p) {
		c.pos++
		return true
	}
	return false
}

// parseName reads a possibly qualified identifier (schema.table, t.col) and
// returns its last segment.
func (c *cursor) parseName() (string, error) {
	t := c.next()
	if t.kind != tokIdent && t.kind != tokQuotedIdent {
		if t.text == "" {
			return "", fmt.Errorf("missing identifier")
		}
		return "", fmt.Errorf("invalid identifier %q", t.text)
	}
	name := t.text
	for c.peek().is(tokPunct, ".") {
		c.pos++
		t = c.next()
		if t.kind != tokIdent && t.kind != tokQuotedIdent {
			return "", fmt.Errorf("invalid identifier %q", name+"."+t.text)
		}
		name = t.text
	}
	return name, nil
}

// findTop returns the index of the first keyword sequence kws at paren depth
// 0 at or after from, or -1.
func (c *cursor) findTop(from int, kws ...string) int {
	depth := 0
	for i := from; i < len(c.toks); i++ {
		t := c.toks[i]
		switch {
		case t.is(tokPunct, "("):
			depth++
		case t.is(tokPunct, ")"):
			depth--
		case depth == 0 && c.at(i).peekKeywords(kws...):
			return i
		}
	}
	return -1
}

// splitTop consumes comma separated items at paren depth 0. It stops after
// an unmatched ')' or before a depth-0 token for which stop returns true.
func (c *cursor) splitTop(stop func(token) bool) [][]token {
	var items [][]token
	var cur []token
	depth := 0
	for !c.done() {
		t := c.peek()
		if depth == 0 {
			if t.is(tokPunct, ")") {
				c.pos++
				break
			}
			if stop != nil && stop(t) {
				break
			}
			if t.is(tokPunct, ",") {
				items = append(items, cur)
				cur = nil
				c.pos++
				continue
			}
		}
		switch {
		case t.is(tokPunct, "("):
			depth++
		case t.is(tokPunct, ")"):
			depth--
		}
		cur = append(cur, t)
		c.pos++
	}
	if len(cur) > 0 || len(items) > 0 {
		items = append(items, cur)
	}
	return items
}
