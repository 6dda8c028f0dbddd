// Package merge combines two edit scripts against a shared ancestor
// tree into a merged tree, or a merged tree plus localized conflicts.
package merge

import (
	"github.com/graft-dev/graft/lang"
	"github.com/graft-dev/graft/tree"
)

// Revision names one of the three inputs of a merge.
type Revision int

const (
	Base Revision = iota
	Left
	Right
)

func (r Revision) String() string {
	switch r {
	case Base:
		return "base"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// MergedNode is one node of the merge output. Exactly one of three
// shapes:
//
//   - Exact: the whole subtree is the node Src of revision Rev, to be
//     copied verbatim from that revision's bytes.
//   - Mixed: children were merged individually; Rev/Src identify the
//     frame node (normally the ancestor) whose delimiters and gaps
//     carry the surrounding text.
//   - Conflict: a placeholder carrying a Conflict region.
type MergedNode struct {
	Rev      Revision
	Src      tree.NodeID
	Exact    bool
	Kind     string
	Children []*MergedNode
	Conflict *Conflict
}

// Conflict is a localized disagreement between the two sides. Anchor is
// the ancestor node the conflict is attached to; for insertion
// conflicts Anchor is the parent and Pred the gap's predecessor (None
// for the head gap). Each side's content is a list of subtrees;
// a nil list means the side deleted the content.
type Conflict struct {
	Anchor tree.NodeID
	Pred   tree.NodeID

	BaseContent  []*MergedNode
	LeftContent  []*MergedNode
	RightContent []*MergedNode
}

// Result is the outcome of a structural three-way merge. If Conflicts
// is empty the merge is clean; otherwise Root still carries the fully
// merged tree for everything outside the conflict regions, with
// conflict placeholders at the disagreeing spots.
type Result struct {
	Profile *lang.Profile

	BaseTree  *tree.Tree
	LeftTree  *tree.Tree
	RightTree *tree.Tree

	// Root is nil when both sides deleted the whole content.
	Root      *MergedNode
	Conflicts []*Conflict
}

func (r *Result) Clean() bool { return len(r.Conflicts) == 0 }

// TreeOf maps a revision tag to its tree.
func (r *Result) TreeOf(rev Revision) *tree.Tree {
	switch rev {
	case Left:
		return r.LeftTree
	case Right:
		return r.RightTree
	default:
		return r.BaseTree
	}
}

func exact(rev Revision, t *tree.Tree, id tree.NodeID) *MergedNode {
	return &MergedNode{Rev: rev, Src: id, Exact: true, Kind: t.Kind(id)}
}
