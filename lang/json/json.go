// Package json provides a span-exact JSON grammar for the merge core.
//
// Unlike encoding/json, the parser keeps every node's byte span into the
// original text so unmodified regions can be re-emitted verbatim.
// Object members are declared commutative with the key as identity.
package json

import (
	"errors"
	"fmt"

	"github.com/graft-dev/graft/lang"
	"github.com/graft-dev/graft/tree"
)

const Name = "json"

var ErrSyntax = errors.New("json syntax error")

// Profile returns a fresh profile; callers may adjust the kind table
// without affecting other registries.
func Profile() *lang.Profile {
	return &lang.Profile{
		Name:       Name,
		Extensions: []string{"json"},
		Kinds: map[string]lang.Flags{
			"object": {Commutative: true, Separator: ", ", Open: "{", Close: "}"},
			"member": {IdentityKind: "string"},
			"array":  {Separator: ", ", Open: "[", Close: "]"},
		},
		Parser: parser{},
	}
}

type parser struct{}

func (parser) Parse(text []byte) (*tree.Tree, error) {
	s := &scanner{text: text, b: tree.NewBuilder(Name, text)}
	s.ws()
	root, _, err := s.value()
	if err != nil {
		return nil, err
	}
	s.ws()
	if s.pos != len(s.text) {
		return nil, s.errf("trailing data")
	}
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

func (s *scanner) ws() {
	for s.pos < len(s.text) {
		switch s.text[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) value() (tree.NodeID, tree.Span, error) {
	if s.pos >= len(s.text) {
		return tree.None, tree.Span{}, s.errf("unexpected end of input")
	}
	switch c := s.text[s.pos]; {
	case c == '{':
		return s.object()
	case c == '[':
		return s.array()
	case c == '"':
		return s.str()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.number()
	case c >= 'a' && c <= 'z':
		return s.literal()
	default:
		return tree.None, tree.Span{}, s.errf("unexpected %q", c)
	}
}

func (s *scanner) object() (tree.NodeID, tree.Span, error) {
	start := s.pos
	s.pos++ // {
	var members []tree.NodeID
	s.ws()
	for s.pos < len(s.text) && s.text[s.pos] != '}' {
		if len(members) > 0 {
			if s.text[s.pos] != ',' {
				return tree.None, tree.Span{}, s.errf("expected ','")
			}
			s.pos++
			s.ws()
		}
		m, err := s.member()
		if err != nil {
			return tree.None, tree.Span{}, err
		}
		members = append(members, m)
		s.ws()
	}
	if s.pos >= len(s.text) {
		return tree.None, tree.Span{}, s.errf("unterminated object")
	}
	s.pos++ // }
	sp := tree.Span{Start: start, End: s.pos}
	return s.b.Node("object", sp, members...), sp, nil
}

func (s *scanner) member() (tree.NodeID, error) {
	key, keySpan, err := s.str()
	if err != nil {
		return tree.None, err
	}
	s.ws()
	if s.pos >= len(s.text) || s.text[s.pos] != ':' {
		return tree.None, s.errf("expected ':'")
	}
	s.pos++
	s.ws()
	val, valSpan, err := s.value()
	if err != nil {
		return tree.None, err
	}
	sp := tree.Span{Start: keySpan.Start, End: valSpan.End}
	return s.b.Node("member", sp, key, val), nil
}

func (s *scanner) array() (tree.NodeID, tree.Span, error) {
	start := s.pos
	s.pos++ // [
	var items []tree.NodeID
	s.ws()
	for s.pos < len(s.text) && s.text[s.pos] != ']' {
		if len(items) > 0 {
			if s.text[s.pos] != ',' {
				return tree.None, tree.Span{}, s.errf("expected ','")
			}
			s.pos++
			s.ws()
		}
		v, _, err := s.value()
		if err != nil {
			return tree.None, tree.Span{}, err
		}
		items = append(items, v)
		s.ws()
	}
	if s.pos >= len(s.text) {
		return tree.None, tree.Span{}, s.errf("unterminated array")
	}
	s.pos++ // ]
	sp := tree.Span{Start: start, End: s.pos}
	return s.b.Node("array", sp, items...), sp, nil
}

func (s *scanner) str() (tree.NodeID, tree.Span, error) {
	if s.pos >= len(s.text) || s.text[s.pos] != '"' {
		return tree.None, tree.Span{}, s.errf("expected string")
	}
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
	digits := 0
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			if c >= '0' && c <= '9' {
				digits++
			}
			s.pos++
			continue
		}
		break
	}
	if digits == 0 {
		return tree.None, tree.Span{}, s.errf("malformed number")
	}
	sp := tree.Span{Start: start, End: s.pos}
	return s.b.Leaf("number", sp), sp, nil
}

func (s *scanner) literal() (tree.NodeID, tree.Span, error) {
	start := s.pos
	for s.pos < len(s.text) && s.text[s.pos] >= 'a' && s.text[s.pos] <= 'z' {
		s.pos++
	}
	switch string(s.text[start:s.pos]) {
	case "true", "false", "null":
		sp := tree.Span{Start: start, End: s.pos}
		return s.b.Leaf("literal", sp), sp, nil
	}
	return tree.None, tree.Span{}, s.errf("unknown literal %q", s.text[start:s.pos])
}
