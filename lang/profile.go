package lang

import (
	"fmt"

	"github.com/graft-dev/graft/tree"
)

// Parser turns raw text into a syntax tree.
type Parser interface {
	Parse(text []byte) (*tree.Tree, error)
}

// Flags is the capability table entry for one node kind.
type Flags struct {
	// Atomic subtrees are matched as a whole; the matcher does not
	// descend into them.
	Atomic bool
	// Commutative kinds carry no child-order semantics: reordering is
	// not an edit and independent insertions coexist without conflict.
	Commutative bool
	// IdentityKind names the kind of the direct child whose text is the
	// node's stable identity key (e.g. the name of a declaration).
	// Empty means no identity key.
	IdentityKind string
	// Separator, Open and Close guide synthesized output when a child
	// is spliced where the original text offers no gap to copy.
	Separator string
	Open      string
	Close     string
}

// Profile describes one language to the core.
type Profile struct {
	Name       string
	Extensions []string
	Kinds      map[string]Flags
	Parser     Parser
}

func (p *Profile) Parse(text []byte) (*tree.Tree, error) {
	if p.Parser == nil {
		return nil, fmt.Errorf("%w: profile %q has no parser", ErrNoParser, p.Name)
	}
	return p.Parser.Parse(text)
}

// FlagsOf returns the capability entry for kind, zero if undeclared.
func (p *Profile) FlagsOf(kind string) Flags {
	return p.Kinds[kind]
}

// IdentityOf extracts the identity key of a node, if its kind declares
// one and a matching child is present.
func (p *Profile) IdentityOf(t *tree.Tree, id tree.NodeID) (string, bool) {
	ik := p.Kinds[t.Kind(id)].IdentityKind
	if ik == "" {
		return "", false
	}
	for _, c := range t.Children(id) {
		if t.Kind(c) == ik {
			return string(t.TextOf(c)), true
		}
	}
	return "", false
}
