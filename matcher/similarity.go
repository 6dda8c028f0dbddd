package matcher

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/graft-dev/graft/tree"
)

// identityBonus rewards pairs that share a declared identity key, e.g.
// two declarations with the same name.
const identityBonus = 0.4

// similarity scores an unmatched same-kind pair. Interior nodes use the
// dice coefficient over already-matched descendants; leaves use text
// similarity. The exact constants are a calibration choice; only
// monotonicity and the deterministic tie-break matter for correctness.
func (mt *Matcher) similarity(m *Matching, an, dn tree.NodeID) float64 {
	a, d := m.A, m.D
	var sim float64
	if a.IsLeaf(an) && d.IsLeaf(dn) {
		sim = textSimilarity(string(a.TextOf(an)), string(d.TextOf(dn)))
	} else {
		sim = mt.dice(m, an, dn)
	}
	ia, oka := mt.Profile.IdentityOf(a, an)
	id, okd := mt.Profile.IdentityOf(d, dn)
	if oka && okd {
		// Distinct identity keys name distinct constructs; no amount of
		// shared content may pair them, or a subtree moved between two
		// keyed members drags its donor along.
		if ia != id {
			return 0
		}
		sim += identityBonus
	}
	return sim
}

// dice is 2·common/(|A|+|D|) where common counts descendants of an whose
// match lands inside dn.
func (mt *Matcher) dice(m *Matching, an, dn tree.NodeID) float64 {
	a, d := m.A, m.D
	common, descA, descD := 0, 0, 0
	tree.PreOrder(a, an, func(id tree.NodeID) bool {
		if id == an {
			return true
		}
		descA++
		if img := m.OfA(id); img != tree.None && d.IsAncestorOf(dn, img) {
			common++
		}
		return true
	})
	tree.PreOrder(d, dn, func(id tree.NodeID) bool {
		if id != dn {
			descD++
		}
		return true
	})
	if descA+descD == 0 {
		// two childless containers
		if a.Hash(an) == d.Hash(dn) {
			return 1
		}
		return 0
	}
	return 2 * float64(common) / float64(descA+descD)
}

// textSimilarity is 1 - levenshtein/maxLen over runes.
func textSimilarity(sa, sd string) float64 {
	if sa == sd {
		return 1
	}
	la, ld := utf8.RuneCountInString(sa), utf8.RuneCountInString(sd)
	maxLen := la
	if ld > maxLen {
		maxLen = ld
	}
	if maxLen == 0 {
		return 1
	}
	dmp := diffmatchpatch.New()
	lev := dmp.DiffLevenshtein(dmp.DiffMain(sa, sd, false))
	return 1 - float64(lev)/float64(maxLen)
}
