package editscript

import (
	"sort"

	"github.com/graft-dev/graft/debug"
	"github.com/graft-dev/graft/lang"
	"github.com/graft-dev/graft/matcher"
	"github.com/graft-dev/graft/tree"
)

// Diff computes the canonical edit script turning the matching's
// ancestor tree into its derived tree.
func Diff(m *matcher.Matching, prof *lang.Profile) *Script {
	a, d := m.A, m.D
	s := &Script{A: a, D: d}

	// Deletions: topmost unmatched ancestor subtrees.
	tree.PreOrder(a, a.Root(), func(an tree.NodeID) bool {
		if m.HasA(an) {
			return true
		}
		s.Ops = append(s.Ops, Op{Kind: Delete, Node: an, Parent: a.Parent(an)})
		return false
	})

	// Updates and cross-parent moves over matched pairs.
	tree.PreOrder(a, a.Root(), func(an tree.NodeID) bool {
		dn := m.OfA(an)
		if dn == tree.None {
			return false
		}
		atomic := prof.FlagsOf(a.Kind(an)).Atomic
		switch {
		case a.IsLeaf(an) && d.IsLeaf(dn):
			if string(a.TextOf(an)) != string(d.TextOf(dn)) {
				s.Ops = append(s.Ops, Op{Kind: Update, Node: an, Derived: dn})
			}
		case atomic:
			if !tree.Isomorphic(a, an, d, dn) {
				s.Ops = append(s.Ops, Op{Kind: Update, Node: an, Derived: dn})
			}
		}
		pa := a.Parent(an)
		pd := d.Parent(dn)
		if pa != tree.None && pd != tree.None {
			destA := m.OfD(pd)
			switch {
			case destA == tree.None:
				// The image ended up inside a freshly inserted subtree,
				// which already carries its content; the ancestor copy
				// goes away.
				s.Ops = append(s.Ops, Op{Kind: Delete, Node: an, Parent: pa})
				return false
			case destA != pa:
				s.Ops = append(s.Ops, Op{
					Kind:    Move,
					Node:    an,
					Derived: dn,
					Parent:  destA,
					Pred:    predAnchor(m, dn, destA),
					Pos:     d.ChildIndex(dn),
				})
			}
		}
		return !atomic
	})

	// Same-parent reorder moves, ordered kinds only.
	tree.PreOrder(a, a.Root(), func(pa tree.NodeID) bool {
		pd := m.OfA(pa)
		if pd == tree.None {
			return false
		}
		flags := prof.FlagsOf(a.Kind(pa))
		if flags.Atomic {
			return false
		}
		if !flags.Commutative {
			s.reorderMoves(m, pa, pd)
		}
		return true
	})

	// Insertions: topmost unmatched derived subtrees.
	tree.PreOrder(d, d.Root(), func(dn tree.NodeID) bool {
		if m.HasD(dn) {
			return true
		}
		pd := d.Parent(dn)
		destA := tree.None
		if pd != tree.None {
			destA = m.OfD(pd)
			if destA == tree.None {
				// inside a larger insertion, already covered
				return false
			}
		}
		s.Ops = append(s.Ops, Op{
			Kind:    Insert,
			Derived: dn,
			Parent:  destA,
			Pred:    predAnchor(m, dn, destA),
			Pos:     d.ChildIndex(dn),
		})
		return false
	})

	sort.SliceStable(s.Ops, func(i, j int) bool {
		oi, oj := &s.Ops[i], &s.Ops[j]
		pi, pj := s.anchorPre(oi), s.anchorPre(oj)
		if pi != pj {
			return pi < pj
		}
		if ri, rj := opRank(oi.Kind), opRank(oj.Kind); ri != rj {
			return ri < rj
		}
		return oi.Pos < oj.Pos
	})
	if debug.Diff() {
		for i := range s.Ops {
			op := &s.Ops[i]
			debug.Logf("edit %s node=%d derived=%d parent=%d pred=%d pos=%d\n",
				op.Kind, op.Node, op.Derived, op.Parent, op.Pred, op.Pos)
		}
	}
	return s
}

// reorderMoves emits moves for matched children of pa whose relative
// order changed in pd. Children on a longest increasing subsequence of
// derived positions stay put; the rest move.
func (s *Script) reorderMoves(m *matcher.Matching, pa, pd tree.NodeID) {
	a, d := s.A, s.D
	var seq []stableChild
	for _, ca := range a.Children(pa) {
		img := m.OfA(ca)
		if img == tree.None || d.Parent(img) != pd {
			continue
		}
		seq = append(seq, stableChild{an: ca, di: d.ChildIndex(img)})
	}
	if len(seq) < 2 {
		return
	}
	keep := lisKeep(seq)
	for i := range seq {
		if keep[i] {
			continue
		}
		an := seq[i].an
		dn := m.OfA(an)
		s.Ops = append(s.Ops, Op{
			Kind:    Move,
			Node:    an,
			Derived: dn,
			Parent:  pa,
			Pred:    predAnchor(m, dn, pa),
			Pos:     seq[i].di,
		})
	}
}

type stableChild struct {
	an tree.NodeID
	di int
}

// lisKeep marks the members of a longest increasing subsequence of the
// derived positions. Quadratic, which is fine for child lists.
func lisKeep(seq []stableChild) []bool {
	n := len(seq)
	length := make([]int, n)
	prev := make([]int, n)
	best, bestEnd := 0, -1
	for i := range n {
		length[i] = 1
		prev[i] = -1
		for j := range i {
			if seq[j].di < seq[i].di && length[j]+1 > length[i] {
				length[i] = length[j] + 1
				prev[i] = j
			}
		}
		if length[i] > best {
			best = length[i]
			bestEnd = i
		}
	}
	keep := make([]bool, n)
	for i := bestEnd; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}

// predAnchor finds the ancestor image of the nearest preceding sibling
// of dn (in the derived tree) that is matched into destA's children.
func predAnchor(m *matcher.Matching, dn, destA tree.NodeID) tree.NodeID {
	d, a := m.D, m.A
	for prev := d.PrevSibling(dn); prev != tree.None; prev = d.PrevSibling(prev) {
		an := m.OfD(prev)
		if an == tree.None {
			continue
		}
		if destA == tree.None || a.Parent(an) == destA {
			return an
		}
	}
	return tree.None
}
