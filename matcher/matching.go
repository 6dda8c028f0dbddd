package matcher

import (
	"errors"
	"fmt"

	"github.com/graft-dev/graft/tree"
)

var (
	ErrInjective = errors.New("matching injectivity violated")
	ErrKind      = errors.New("matched nodes have incompatible kinds")
)

// Matching is a partial injective correspondence between the nodes of an
// ancestor tree A and a derived tree D. Matched nodes always have equal
// kinds. Immutable once the matcher returns it.
type Matching struct {
	A, D *tree.Tree

	a2d []tree.NodeID
	d2a []tree.NodeID
	n   int
}

func NewMatching(a, d *tree.Tree) *Matching {
	m := &Matching{
		A:   a,
		D:   d,
		a2d: make([]tree.NodeID, a.Len()),
		d2a: make([]tree.NodeID, d.Len()),
	}
	for i := range m.a2d {
		m.a2d[i] = tree.None
	}
	for i := range m.d2a {
		m.d2a[i] = tree.None
	}
	return m
}

// Put records a ↔ d. A violation of injectivity or kind compatibility is
// an internal defect: callers abort the merge rather than continue.
func (m *Matching) Put(a, d tree.NodeID) error {
	if m.A.Kind(a) != m.D.Kind(d) {
		return fmt.Errorf("%w: %q vs %q", ErrKind, m.A.Kind(a), m.D.Kind(d))
	}
	if m.a2d[a] != tree.None || m.d2a[d] != tree.None {
		return fmt.Errorf("%w: a=%d d=%d", ErrInjective, a, d)
	}
	m.a2d[a] = d
	m.d2a[d] = a
	m.n++
	return nil
}

// OfA returns the derived node matched to a, or None.
func (m *Matching) OfA(a tree.NodeID) tree.NodeID { return m.a2d[a] }

// OfD returns the ancestor node matched to d, or None.
func (m *Matching) OfD(d tree.NodeID) tree.NodeID { return m.d2a[d] }

func (m *Matching) HasA(a tree.NodeID) bool { return m.a2d[a] != tree.None }
func (m *Matching) HasD(d tree.NodeID) bool { return m.d2a[d] != tree.None }

// Count is the number of matched pairs.
func (m *Matching) Count() int { return m.n }
