// Package conf provides a grammar for build-configuration files: a small
// language of call statements, keyword arguments and lists, in the shape
// of Bazel/Starlark build files.
//
//	load("//tools:defs.bzl", "lib")
//
//	lib(
//	    name = "util",
//	    deps = ["//a", "//b"],
//	)
//
// Dependency lists and the top level are declared commutative, so two
// sides each adding an entry merge without conflict.
package conf

import (
	"errors"
	"fmt"

	"github.com/graft-dev/graft/lang"
	"github.com/graft-dev/graft/tree"
)

const Name = "conf"

var ErrSyntax = errors.New("conf syntax error")

func Profile() *lang.Profile {
	return &lang.Profile{
		Name:       Name,
		Extensions: []string{"conf", "bzl", "bazel"},
		Kinds: map[string]lang.Flags{
			"source_file": {Commutative: true, Separator: "\n\n"},
			"call":        {IdentityKind: "ident", Separator: ", ", Open: "(", Close: ")"},
			"kwarg":       {IdentityKind: "ident", Separator: " = "},
			"list":        {Commutative: true, Separator: ", ", Open: "[", Close: "]"},
		},
		Parser: parser{},
	}
}

type parser struct{}

func (parser) Parse(text []byte) (*tree.Tree, error) {
	s := &scanner{text: text, b: tree.NewBuilder(Name, text)}
	s.ws()
	var stmts []tree.NodeID
	first, last := -1, -1
	for s.pos < len(s.text) {
		id, sp, err := s.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, id)
		if first < 0 {
			first = sp.Start
		}
		last = sp.End
		s.ws()
	}
	if first < 0 {
		first, last = 0, 0
	}
	root := s.b.Node("source_file", tree.Span{Start: first, End: last}, stmts...)
	return s.b.Finish(root)
}

type scanner struct {
	text []byte
	pos  int
	b    *tree.Builder
}

func (s *scanner) errf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s at byte %d", ErrSyntax, msg, s.pos)
}

// ws skips whitespace and # comments.
func (s *scanner) ws() {
	for s.pos < len(s.text) {
		switch s.text[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		case '#':
			for s.pos < len(s.text) && s.text[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

// statement is a call or a top-level assignment, both led by an ident.
func (s *scanner) statement() (tree.NodeID, tree.Span, error) {
	id, sp, err := s.ident()
	if err != nil {
		return tree.None, tree.Span{}, err
	}
	s.ws()
	if s.pos < len(s.text) {
		switch s.text[s.pos] {
		case '(':
			return s.call(id, sp)
		case '=':
			return s.kwarg(id, sp)
		}
	}
	return tree.None, tree.Span{}, s.errf("expected '(' or '=' after %q", s.text[sp.Start:sp.End])
}

func (s *scanner) call(callee tree.NodeID, calleeSpan tree.Span) (tree.NodeID, tree.Span, error) {
	s.pos++ // (
	s.ws()
	children := []tree.NodeID{callee}
	for s.pos < len(s.text) && s.text[s.pos] != ')' {
		if len(children) > 1 {
			if s.text[s.pos] != ',' {
				return tree.None, tree.Span{}, s.errf("expected ','")
			}
			s.pos++
			s.ws()
			if s.pos < len(s.text) && s.text[s.pos] == ')' {
				break // trailing comma
			}
		}
		arg, _, err := s.arg()
		if err != nil {
			return tree.None, tree.Span{}, err
		}
		children = append(children, arg)
		s.ws()
	}
	if s.pos >= len(s.text) {
		return tree.None, tree.Span{}, s.errf("unterminated call")
	}
	s.pos++ // )
	sp := tree.Span{Start: calleeSpan.Start, End: s.pos}
	return s.b.Node("call", sp, children...), sp, nil
}

// arg is a keyword argument or a plain value.
func (s *scanner) arg() (tree.NodeID, tree.Span, error) {
	if s.pos < len(s.text) && isIdentStart(s.text[s.pos]) {
		id, sp, err := s.ident()
		if err != nil {
			return tree.None, tree.Span{}, err
		}
		s.ws()
		if s.pos < len(s.text) {
			switch s.text[s.pos] {
			case '=':
				return s.kwarg(id, sp)
			case '(':
				return s.call(id, sp)
			}
		}
		return id, sp, nil
	}
	return s.value()
}

func (s *scanner) kwarg(key tree.NodeID, keySpan tree.Span) (tree.NodeID, tree.Span, error) {
	s.pos++ // =
	s.ws()
	val, valSpan, err := s.value()
	if err != nil {
		return tree.None, tree.Span{}, err
	}
	sp := tree.Span{Start: keySpan.Start, End: valSpan.End}
	return s.b.Node("kwarg", sp, key, val), sp, nil
}

func (s *scanner) value() (tree.NodeID, tree.Span, error) {
	if s.pos >= len(s.text) {
		return tree.None, tree.Span{}, s.errf("unexpected end of input")
	}
	switch c := s.text[s.pos]; {
	case c == '"':
		return s.str()
	case c == '[':
		return s.list()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.number()
	case isIdentStart(c):
		id, sp, err := s.ident()
		if err != nil {
			return tree.None, tree.Span{}, err
		}
		s.ws()
		if s.pos < len(s.text) && s.text[s.pos] == '(' {
			return s.call(id, sp)
		}
		return id, sp, nil
	default:
		return tree.None, tree.Span{}, s.errf("unexpected %q", c)
	}
}

func (s *scanner) list() (tree.NodeID, tree.Span, error) {
	start := s.pos
	s.pos++ // [
	s.ws()
	var items []tree.NodeID
	for s.pos < len(s.text) && s.text[s.pos] != ']' {
		if len(items) > 0 {
			if s.text[s.pos] != ',' {
				return tree.None, tree.Span{}, s.errf("expected ','")
			}
			s.pos++
			s.ws()
			if s.pos < len(s.text) && s.text[s.pos] == ']' {
				break // trailing comma
			}
		}
		v, _, err := s.value()
		if err != nil {
			return tree.None, tree.Span{}, err
		}
		items = append(items, v)
		s.ws()
	}
	if s.pos >= len(s.text) {
		return tree.None, tree.Span{}, s.errf("unterminated list")
	}
	s.pos++ // ]
	sp := tree.Span{Start: start, End: s.pos}
	return s.b.Node("list", sp, items...), sp, nil
}

func (s *scanner) str() (tree.NodeID, tree.Span, error) {
	start := s.pos
	s.pos++
	for s.pos < len(s.text) {
		switch s.text[s.pos] {
		case '\\':
			s.pos += 2
		case '"':
			s.pos++
			sp := tree.Span{Start: start, End: s.pos}
			return s.b.Leaf("string", sp), sp, nil
		default:
			s.pos++
		}
	}
	return tree.None, tree.Span{}, s.errf("unterminated string")
}

func (s *scanner) number() (tree.NodeID, tree.Span, error) {
	start := s.pos
	if s.text[s.pos] == '-' {
		s.pos++
	}
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			s.pos++
			continue
		}
		break
	}
	sp := tree.Span{Start: start, End: s.pos}
	if sp.Len() == 0 {
		return tree.None, tree.Span{}, s.errf("malformed number")
	}
	return s.b.Leaf("number", sp), sp, nil
}

func (s *scanner) ident() (tree.NodeID, tree.Span, error) {
	start := s.pos
	if s.pos >= len(s.text) || !isIdentStart(s.text[s.pos]) {
		return tree.None, tree.Span{}, s.errf("expected identifier")
	}
	s.pos++
	for s.pos < len(s.text) && isIdentPart(s.text[s.pos]) {
		s.pos++
	}
	sp := tree.Span{Start: start, End: s.pos}
	return s.b.Leaf("ident", sp), sp, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
