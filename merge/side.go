package merge

import (
	"sort"

	"github.com/graft-dev/graft/editscript"
	"github.com/graft-dev/graft/matcher"
	"github.com/graft-dev/graft/tree"
)

// gapKey identifies an insertion point in the ancestor frame: the slot
// after pred (None = head) among parent's children.
type gapKey struct {
	parent tree.NodeID
	pred   tree.NodeID
}

// side indexes one derived revision's edit script by ancestor anchor.
type side struct {
	rev Revision
	t   *tree.Tree
	m   *matcher.Matching

	deleted map[tree.NodeID]bool
	updates map[tree.NodeID]*editscript.Op
	moves   map[tree.NodeID]*editscript.Op
	inserts map[gapKey][]*editscript.Op
	movedIn map[gapKey][]*editscript.Op

	// dirty[an] reports that the subtree at ancestor node an is touched
	// by some edit of this side.
	dirty []bool
}

func newSide(rev Revision, base *tree.Tree, m *matcher.Matching, s *editscript.Script) *side {
	sd := &side{
		rev:     rev,
		t:       s.D,
		m:       m,
		deleted: map[tree.NodeID]bool{},
		updates: map[tree.NodeID]*editscript.Op{},
		moves:   map[tree.NodeID]*editscript.Op{},
		inserts: map[gapKey][]*editscript.Op{},
		movedIn: map[gapKey][]*editscript.Op{},
		dirty:   make([]bool, base.Len()),
	}
	mark := func(an tree.NodeID) {
		for n := an; n != tree.None; n = base.Parent(n) {
			if sd.dirty[n] {
				return
			}
			sd.dirty[n] = true
		}
	}
	for i := range s.Ops {
		op := &s.Ops[i]
		switch op.Kind {
		case editscript.Delete:
			// The deletion dirties the frame it leaves, not the deleted
			// subtree; deletion of a node is read from deleted directly.
			sd.deleted[op.Node] = true
			mark(base.Parent(op.Node))
		case editscript.Update:
			sd.updates[op.Node] = op
			mark(op.Node)
		case editscript.Move:
			sd.moves[op.Node] = op
			sd.movedIn[gapKey{op.Parent, op.Pred}] = append(sd.movedIn[gapKey{op.Parent, op.Pred}], op)
			// The departure and arrival frames are touched; the moved
			// subtree itself is unchanged and stays copyable.
			mark(base.Parent(op.Node))
			mark(op.Parent)
		case editscript.Insert:
			if op.Parent == tree.None {
				// root replacement, resolved up front by Merge
				continue
			}
			k := gapKey{op.Parent, op.Pred}
			sd.inserts[k] = append(sd.inserts[k], op)
			mark(op.Parent)
		}
	}
	for _, ops := range sd.inserts {
		sort.SliceStable(ops, func(i, j int) bool { return ops[i].Pos < ops[j].Pos })
	}
	for _, ops := range sd.movedIn {
		sort.SliceStable(ops, func(i, j int) bool { return ops[i].Pos < ops[j].Pos })
	}
	return sd
}

func (s *side) dirtyAt(an tree.NodeID) bool { return s.dirty[an] }
