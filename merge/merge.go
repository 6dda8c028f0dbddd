package merge

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/graft-dev/graft/debug"
	"github.com/graft-dev/graft/editscript"
	"github.com/graft-dev/graft/lang"
	"github.com/graft-dev/graft/matcher"
	"github.com/graft-dev/graft/tree"
)

// Input bundles the three parsed revisions with the two matchings and
// edit scripts against the shared ancestor.
type Input struct {
	Profile *lang.Profile

	Base  *tree.Tree
	Left  *tree.Tree
	Right *tree.Tree

	LeftMatch  *matcher.Matching
	RightMatch *matcher.Matching

	LeftScript  *editscript.Script
	RightScript *editscript.Script
}

// Merge combines the two edit scripts over the ancestor tree. Edits
// touching disjoint subtrees are both applied; disagreements become
// localized Conflict regions in the result. Conflicts are minimized
// before the result is returned.
func Merge(in *Input) (*Result, error) {
	mg := &merger{
		in:           in,
		b:            in.Base,
		ls:           newSide(Left, in.Base, in.LeftMatch, in.LeftScript),
		rs:           newSide(Right, in.Base, in.RightMatch, in.RightScript),
		applied:      map[tree.NodeID]*appliedMove{},
		moveConflict: map[tree.NodeID]bool{},
		built:        make([]bool, in.Base.Len()),
	}
	res := &Result{
		Profile:   in.Profile,
		BaseTree:  in.Base,
		LeftTree:  in.Left,
		RightTree: in.Right,
	}

	rootA := in.Base.Root()
	repL := !in.LeftMatch.HasA(rootA)
	repR := !in.RightMatch.HasA(rootA)
	if repL || repR {
		mg.mergeRoots(res, repL, repR)
		res.Conflicts = mg.conflicts
		Minimize(res)
		return res, nil
	}

	mg.resolveMoves()
	root, err := mg.buildNode(rootA)
	if err != nil {
		return nil, err
	}
	res.Root = root
	res.Conflicts = mg.conflicts
	Minimize(res)
	if debug.Merge() {
		debug.Logf("merge: %d conflicts\n", len(res.Conflicts))
	}
	return res, nil
}

type appliedMove struct {
	s  *side
	op *editscript.Op
}

type merger struct {
	in *Input
	b  *tree.Tree
	ls *side
	rs *side

	// applied holds the winning move per moved ancestor node; nodes in
	// moveConflict stay at their original position as a conflict.
	applied      map[tree.NodeID]*appliedMove
	moveConflict map[tree.NodeID]bool

	conflicts []*Conflict
	built     []bool
}

// mergeRoots handles root replacement, where at least one side's root
// has no ancestor counterpart.
func (mg *merger) mergeRoots(res *Result, repL, repR bool) {
	rootA := mg.b.Root()
	lr, rr := mg.in.Left.Root(), mg.in.Right.Root()
	switch {
	case repL && repR:
		if tree.Isomorphic(mg.in.Left, lr, mg.in.Right, rr) {
			res.Root = exact(Left, mg.in.Left, lr)
			return
		}
	case repL:
		if !mg.rs.dirtyAt(rootA) {
			res.Root = exact(Left, mg.in.Left, lr)
			return
		}
	case repR:
		if !mg.ls.dirtyAt(rootA) {
			res.Root = exact(Right, mg.in.Right, rr)
			return
		}
	}
	c := &Conflict{
		Anchor:       rootA,
		Pred:         tree.None,
		BaseContent:  []*MergedNode{exact(Base, mg.b, rootA)},
		LeftContent:  []*MergedNode{exact(Left, mg.in.Left, lr)},
		RightContent: []*MergedNode{exact(Right, mg.in.Right, rr)},
	}
	mg.conflicts = append(mg.conflicts, c)
	res.Root = &MergedNode{Rev: Base, Src: rootA, Kind: mg.b.Kind(rootA), Conflict: c}
}

// resolveMoves decides the fate of every moved node: applied at one
// destination, or downgraded to a conflict when the sides disagree or
// the combined moves would form a cycle.
func (mg *merger) resolveMoves() {
	var anchors []tree.NodeID
	for an := range mg.ls.moves {
		anchors = append(anchors, an)
	}
	for an := range mg.rs.moves {
		if _, dup := mg.ls.moves[an]; !dup {
			anchors = append(anchors, an)
		}
	}
	sort.Slice(anchors, func(i, j int) bool {
		return mg.b.PreIndex(anchors[i]) < mg.b.PreIndex(anchors[j])
	})
	for _, an := range anchors {
		lm, rm := mg.ls.moves[an], mg.rs.moves[an]
		switch {
		case lm != nil && rm != nil:
			if lm.Parent == rm.Parent && lm.Pred == rm.Pred {
				mg.applied[an] = &appliedMove{mg.ls, lm}
			} else {
				mg.moveConflict[an] = true
			}
		case lm != nil:
			if mg.deletedWithin(mg.rs, an) {
				mg.moveConflict[an] = true
			} else {
				mg.applied[an] = &appliedMove{mg.ls, lm}
			}
		default:
			if mg.deletedWithin(mg.ls, an) {
				mg.moveConflict[an] = true
			} else {
				mg.applied[an] = &appliedMove{mg.rs, rm}
			}
		}
	}

	// Combining one move per side can create a parent cycle that
	// neither side has on its own. Downgrade every move on the cycle.
	parentOf := func(x tree.NodeID) tree.NodeID {
		if am := mg.applied[x]; am != nil {
			return am.op.Parent
		}
		return mg.b.Parent(x)
	}
	for changed := true; changed; {
		changed = false
		for _, an := range anchors {
			am := mg.applied[an]
			if am == nil {
				continue
			}
			// Collect the applied moves on the walk toward the root
			// before touching anything; mutating mid-walk would reroute
			// the walk itself. A loop not passing through an belongs to
			// another anchor's iteration.
			var cycle []tree.NodeID
			seen := map[tree.NodeID]bool{}
			closed := false
			for p := am.op.Parent; p != tree.None && !seen[p]; p = parentOf(p) {
				seen[p] = true
				if mg.applied[p] != nil {
					cycle = append(cycle, p)
				}
				if p == an {
					closed = true
					break
				}
			}
			if !closed {
				continue
			}
			for _, x := range cycle {
				delete(mg.applied, x)
				mg.moveConflict[x] = true
			}
			changed = true
		}
	}
}

// deletedWithin reports whether an or one of its ancestors is deleted
// on side s, meaning the node has no surviving home there.
func (mg *merger) deletedWithin(s *side, an tree.NodeID) bool {
	for n := an; n != tree.None; n = mg.b.Parent(n) {
		if s.deleted[n] {
			return true
		}
	}
	return false
}

// buildNode merges the ancestor subtree rooted at an. A nil node with
// nil error means both sides agreed to drop it.
func (mg *merger) buildNode(an tree.NodeID) (*MergedNode, error) {
	if mg.built[an] {
		return nil, fmt.Errorf("%w: node %d merged twice", ErrInternal, an)
	}
	mg.built[an] = true

	l, r := mg.ls.m.OfA(an), mg.rs.m.OfA(an)
	if mg.moveConflict[an] {
		return mg.nodeConflict(an, mg.image(mg.ls, l), mg.image(mg.rs, r)), nil
	}

	delL, delR := mg.ls.deleted[an], mg.rs.deleted[an]
	switch {
	case delL && delR:
		if mg.ls.dirtyAt(an) || mg.rs.dirtyAt(an) {
			// Both deleted it but one side also edited within; dropping
			// would lose that edit silently.
			return mg.nodeConflict(an, mg.image(mg.ls, l), mg.image(mg.rs, r)), nil
		}
		return nil, nil
	case delL:
		if mg.rs.dirtyAt(an) {
			return mg.nodeConflict(an, nil, mg.image(mg.rs, r)), nil
		}
		return nil, nil
	case delR:
		if mg.ls.dirtyAt(an) {
			return mg.nodeConflict(an, mg.image(mg.ls, l), nil), nil
		}
		return nil, nil
	}

	ul, ur := mg.ls.updates[an], mg.rs.updates[an]
	switch {
	case ul != nil && ur != nil:
		if tree.Isomorphic(mg.ls.t, ul.Derived, mg.rs.t, ur.Derived) {
			return exact(Left, mg.ls.t, ul.Derived), nil
		}
		return mg.nodeConflict(an,
			[]*MergedNode{exact(Left, mg.ls.t, ul.Derived)},
			[]*MergedNode{exact(Right, mg.rs.t, ur.Derived)}), nil
	case ul != nil:
		return exact(Left, mg.ls.t, ul.Derived), nil
	case ur != nil:
		return exact(Right, mg.rs.t, ur.Derived), nil
	}

	if !mg.ls.dirtyAt(an) && !mg.rs.dirtyAt(an) {
		return mg.exactChoice(an, l, r), nil
	}

	node := &MergedNode{Rev: Base, Src: an, Kind: mg.b.Kind(an)}
	if err := mg.emitGap(node, an, tree.None); err != nil {
		return nil, err
	}
	for _, ca := range mg.b.Children(an) {
		if mg.applied[ca] == nil {
			c, err := mg.buildNode(ca)
			if err != nil {
				return nil, err
			}
			if c != nil {
				node.Children = append(node.Children, c)
			}
		}
		if err := mg.emitGap(node, an, ca); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// exactChoice picks the revision an untouched subtree is copied from.
// A side whose bytes differ from the ancestor carried a formatting-only
// change worth keeping; left wins when both differ.
func (mg *merger) exactChoice(an, l, r tree.NodeID) *MergedNode {
	bb := mg.b.TextOf(an)
	if l != tree.None && !bytes.Equal(mg.ls.t.TextOf(l), bb) {
		return exact(Left, mg.ls.t, l)
	}
	if r != tree.None && !bytes.Equal(mg.rs.t.TextOf(r), bb) {
		return exact(Right, mg.rs.t, r)
	}
	return exact(Base, mg.b, an)
}

// emitGap appends the subtrees both sides spliced into the gap after
// pred among an's children. Left content precedes right content;
// identical insertions are emitted once. Competing insertions into an
// ordered gap become a conflict.
func (mg *merger) emitGap(node *MergedNode, an, pred tree.NodeID) error {
	lops := mg.gapOps(mg.ls, an, pred)
	rops := mg.gapOps(mg.rs, an, pred)

	rops = mg.dropEchoes(lops, rops)
	if len(lops) == 0 && len(rops) == 0 {
		return nil
	}

	commut := mg.in.Profile.FlagsOf(mg.b.Kind(an)).Commutative
	if !commut && len(lops) > 0 && len(rops) > 0 {
		lc, err := mg.gapContent(mg.ls, lops)
		if err != nil {
			return err
		}
		rc, err := mg.gapContent(mg.rs, rops)
		if err != nil {
			return err
		}
		node.Children = append(node.Children, mg.gapConflict(an, pred, lc, rc))
		return nil
	}
	lc, err := mg.gapContent(mg.ls, lops)
	if err != nil {
		return err
	}
	rc, err := mg.gapContent(mg.rs, rops)
	if err != nil {
		return err
	}
	node.Children = append(node.Children, lc...)
	node.Children = append(node.Children, rc...)
	return nil
}

// gapOps collects one side's insertions and applied move arrivals at a
// gap, in derived position order.
func (mg *merger) gapOps(s *side, an, pred tree.NodeID) []*editscript.Op {
	k := gapKey{an, pred}
	ops := append([]*editscript.Op(nil), s.inserts[k]...)
	for _, op := range s.movedIn[k] {
		if am := mg.applied[op.Node]; am != nil && am.op == op {
			ops = append(ops, op)
		}
	}
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Pos < ops[j].Pos })
	return ops
}

// dropEchoes removes right insertions isomorphic to a left insertion at
// the same gap, so a cherry-picked addition lands once.
func (mg *merger) dropEchoes(lops, rops []*editscript.Op) []*editscript.Op {
	if len(lops) == 0 || len(rops) == 0 {
		return rops
	}
	used := make([]bool, len(lops))
	var out []*editscript.Op
	for _, rop := range rops {
		if rop.Kind != editscript.Insert {
			out = append(out, rop)
			continue
		}
		echoed := false
		for i, lop := range lops {
			if used[i] || lop.Kind != editscript.Insert {
				continue
			}
			if tree.Isomorphic(mg.ls.t, lop.Derived, mg.rs.t, rop.Derived) {
				used[i] = true
				echoed = true
				break
			}
		}
		if !echoed {
			out = append(out, rop)
		}
	}
	return out
}

func (mg *merger) gapContent(s *side, ops []*editscript.Op) ([]*MergedNode, error) {
	var out []*MergedNode
	for _, op := range ops {
		switch op.Kind {
		case editscript.Insert:
			out = append(out, exact(s.rev, s.t, op.Derived))
		case editscript.Move:
			c, err := mg.buildNode(op.Node)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out = append(out, c)
			}
		default:
			return nil, fmt.Errorf("%w: %s op in gap", ErrInternal, op.Kind)
		}
	}
	return out, nil
}

func (mg *merger) image(s *side, n tree.NodeID) []*MergedNode {
	if n == tree.None {
		return nil
	}
	return []*MergedNode{exact(s.rev, s.t, n)}
}

func (mg *merger) nodeConflict(an tree.NodeID, lc, rc []*MergedNode) *MergedNode {
	c := &Conflict{
		Anchor:       an,
		Pred:         tree.None,
		BaseContent:  []*MergedNode{exact(Base, mg.b, an)},
		LeftContent:  lc,
		RightContent: rc,
	}
	mg.conflicts = append(mg.conflicts, c)
	return &MergedNode{Rev: Base, Src: an, Kind: mg.b.Kind(an), Conflict: c}
}

// gapConflict has no position of its own in any revision, so its
// placeholder carries no source node.
func (mg *merger) gapConflict(an, pred tree.NodeID, lc, rc []*MergedNode) *MergedNode {
	c := &Conflict{
		Anchor:       an,
		Pred:         pred,
		LeftContent:  lc,
		RightContent: rc,
	}
	mg.conflicts = append(mg.conflicts, c)
	return &MergedNode{Rev: Base, Src: tree.None, Kind: mg.b.Kind(an), Conflict: c}
}
