// Package matcher aligns nodes of two syntax trees into an injective
// correspondence, combining exact subtree matching with similarity-based
// recovery for edited regions.
package matcher

import (
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/graft-dev/graft/debug"
	"github.com/graft-dev/graft/lang"
	"github.com/graft-dev/graft/tree"
)

// Matcher holds the tunable parameters of the alignment.
type Matcher struct {
	Profile *lang.Profile

	// MinHeight is the minimum subtree height considered in the exact
	// phase; single tokens are left to the recovery pass so that stray
	// leaf coincidences don't pin unrelated regions together.
	MinHeight int
	// SimThreshold is the acceptance threshold of the approximate phase.
	SimThreshold float64
}

func New(p *lang.Profile) *Matcher {
	return &Matcher{Profile: p, MinHeight: 1, SimThreshold: 0.5}
}

// Match aligns ancestor tree a with derived tree d.
//
// Three passes, in order: exact hash-based subtree matching (largest
// first), global approximate matching by similarity, and a recovery pass
// aligning leftover children of matched parents. The result is
// deterministic for identical inputs.
func (mt *Matcher) Match(a, d *tree.Tree) (*Matching, error) {
	m := NewMatching(a, d)
	if err := mt.exactPass(m); err != nil {
		return nil, err
	}
	ra, rd := a.Root(), d.Root()
	if !m.HasA(ra) && !m.HasD(rd) && a.Kind(ra) == d.Kind(rd) {
		if err := m.Put(ra, rd); err != nil {
			return nil, err
		}
	}
	if err := mt.approxPass(m); err != nil {
		return nil, err
	}
	if err := mt.recoveryPass(m); err != nil {
		return nil, err
	}
	if debug.Match() {
		debug.Logf("matched %d pairs (%d/%d ancestor, %d derived nodes)\n",
			m.Count(), m.Count(), a.Len(), d.Len())
	}
	return m, nil
}

// eligible marks nodes that participate in matching: everything except
// strict descendants of atomic kinds.
func (mt *Matcher) eligible(t *tree.Tree) []bool {
	el := make([]bool, t.Len())
	tree.PreOrder(t, t.Root(), func(id tree.NodeID) bool {
		el[id] = true
		return !mt.Profile.FlagsOf(t.Kind(id)).Atomic
	})
	return el
}

// exactPass matches identical subtrees outright, highest first, and
// removes their descendants from further consideration.
func (mt *Matcher) exactPass(m *Matching) error {
	a, d := m.A, m.D
	elA, elD := mt.eligible(a), mt.eligible(d)

	byHash := map[uint64][]tree.NodeID{}
	tree.PreOrder(a, a.Root(), func(id tree.NodeID) bool {
		if elA[id] && a.Height(id) >= mt.MinHeight {
			byHash[a.Hash(id)] = append(byHash[a.Hash(id)], id)
		}
		return true
	})

	var derived []tree.NodeID
	tree.PreOrder(d, d.Root(), func(id tree.NodeID) bool {
		if elD[id] && d.Height(id) >= mt.MinHeight {
			derived = append(derived, id)
		}
		return true
	})
	sort.Slice(derived, func(i, j int) bool {
		hi, hj := d.Height(derived[i]), d.Height(derived[j])
		if hi != hj {
			return hi > hj
		}
		return d.PreIndex(derived[i]) < d.PreIndex(derived[j])
	})

	for _, dn := range derived {
		if m.HasD(dn) {
			continue
		}
		best := tree.None
		bestDist := 0
		for _, an := range byHash[d.Hash(dn)] {
			if m.HasA(an) || a.Kind(an) != d.Kind(dn) {
				continue
			}
			if !tree.Isomorphic(a, an, d, dn) {
				continue
			}
			dist := a.PreIndex(an) - d.PreIndex(dn)
			if dist < 0 {
				dist = -dist
			}
			if best == tree.None || dist < bestDist ||
				(dist == bestDist && a.PreIndex(an) < a.PreIndex(best)) {
				best, bestDist = an, dist
			}
		}
		if best == tree.None {
			continue
		}
		if err := matchSubtrees(m, best, dn); err != nil {
			return err
		}
	}
	return nil
}

// matchSubtrees pairs two isomorphic subtrees node by node.
func matchSubtrees(m *Matching, a, d tree.NodeID) error {
	type pair struct{ a, d tree.NodeID }
	stack := []pair{{a, d}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := m.Put(p.a, p.d); err != nil {
			return err
		}
		ca, cd := m.A.Children(p.a), m.D.Children(p.d)
		for i := range ca {
			stack = append(stack, pair{ca[i], cd[i]})
		}
	}
	return nil
}

type candidate struct {
	a, d tree.NodeID
	sim  float64
	dist int
}

// approxPass pairs remaining same-kind nodes by descending similarity,
// breaking ties by positional proximity. Accepted pairs must nest inside
// the images of their nearest matched ancestors, which keeps the
// matching monotone.
func (mt *Matcher) approxPass(m *Matching) error {
	a, d := m.A, m.D
	elA, elD := mt.eligible(a), mt.eligible(d)

	byKindA := map[string][]tree.NodeID{}
	tree.PreOrder(a, a.Root(), func(id tree.NodeID) bool {
		if elA[id] && !m.HasA(id) {
			k := a.Kind(id)
			byKindA[k] = append(byKindA[k], id)
		}
		return true
	})

	var cands []candidate
	tree.PreOrder(d, d.Root(), func(dn tree.NodeID) bool {
		if !elD[dn] || m.HasD(dn) {
			return true
		}
		for _, an := range byKindA[d.Kind(dn)] {
			sim := mt.similarity(m, an, dn)
			if sim < mt.SimThreshold {
				continue
			}
			dist := a.PreIndex(an) - d.PreIndex(dn)
			if dist < 0 {
				dist = -dist
			}
			cands = append(cands, candidate{a: an, d: dn, sim: sim, dist: dist})
		}
		return true
	})

	sort.Slice(cands, func(i, j int) bool {
		ci, cj := &cands[i], &cands[j]
		if ci.sim != cj.sim {
			return ci.sim > cj.sim
		}
		if ci.dist != cj.dist {
			return ci.dist < cj.dist
		}
		if ci.a != cj.a {
			return a.PreIndex(ci.a) < a.PreIndex(cj.a)
		}
		return d.PreIndex(ci.d) < d.PreIndex(cj.d)
	})

	for i := range cands {
		c := &cands[i]
		if m.HasA(c.a) || m.HasD(c.d) {
			continue
		}
		if !mt.monotone(m, c.a, c.d) {
			continue
		}
		if err := m.Put(c.a, c.d); err != nil {
			return err
		}
	}
	return nil
}

// monotone checks that matching a ↔ d would not cross an existing match:
// the nearest matched ancestor of a must map to an ancestor of d, and
// vice versa.
func (mt *Matcher) monotone(m *Matching, a, d tree.NodeID) bool {
	if na := nearestMatchedAncestor(m.A, a, m.HasA); na != tree.None {
		img := m.OfA(na)
		if img != d && !m.D.IsAncestorOf(img, d) {
			return false
		}
	}
	if nd := nearestMatchedAncestor(m.D, d, m.HasD); nd != tree.None {
		img := m.OfD(nd)
		if img != a && !m.A.IsAncestorOf(img, a) {
			return false
		}
	}
	return true
}

func nearestMatchedAncestor(t *tree.Tree, id tree.NodeID, has func(tree.NodeID) bool) tree.NodeID {
	for p := t.Parent(id); p != tree.None; p = t.Parent(p) {
		if has(p) {
			return p
		}
	}
	return tree.None
}

// recoveryPass aligns leftover same-kind children of matched parents
// positionally, so that two edits of the same construct meet as an
// update instead of an unrelated delete/insert pair.
func (mt *Matcher) recoveryPass(m *Matching) error {
	a := m.A
	var queue []tree.NodeID
	tree.PreOrder(a, a.Root(), func(id tree.NodeID) bool {
		if m.HasA(id) {
			queue = append(queue, id)
		}
		return true
	})
	for len(queue) > 0 {
		pa := queue[0]
		queue = queue[1:]
		if mt.Profile.FlagsOf(a.Kind(pa)).Atomic {
			continue
		}
		pd := m.OfA(pa)
		pairs := alignChildren(m, pa, pd)
		for _, p := range pairs {
			if m.HasA(p.a) || m.HasD(p.d) {
				continue
			}
			if err := m.Put(p.a, p.d); err != nil {
				return err
			}
			queue = append(queue, p.a)
		}
	}
	return nil
}

type pairing struct{ a, d tree.NodeID }

// alignChildren aligns the child sequences of a matched pair by kind,
// using rune-sequence diffing, and returns the unmatched pairs that fall
// into equal runs.
func alignChildren(m *Matching, pa, pd tree.NodeID) []pairing {
	a, d := m.A, m.D
	ca, cd := a.Children(pa), d.Children(pd)
	if len(ca) == 0 || len(cd) == 0 {
		return nil
	}
	kindRunes := map[string]rune{}
	runesOf := func(t *tree.Tree, children []tree.NodeID) []rune {
		rs := make([]rune, len(children))
		for i, c := range children {
			k := t.Kind(c)
			r, ok := kindRunes[k]
			if !ok {
				r = rune(len(kindRunes) + 1)
				kindRunes[k] = r
			}
			rs[i] = r
		}
		return rs
	}
	ra, rd := runesOf(a, ca), runesOf(d, cd)
	dmp := diffmatchpatch.New()
	var out []pairing
	ai, di := 0, 0
	for _, df := range dmp.DiffMainRunes(ra, rd, false) {
		n := len([]rune(df.Text))
		switch df.Type {
		case diffmatchpatch.DiffDelete:
			ai += n
		case diffmatchpatch.DiffInsert:
			di += n
		default:
			for range n {
				out = append(out, pairing{a: ca[ai], d: cd[di]})
				ai++
				di++
			}
		}
	}
	return out
}
