// Package editscript derives ordered edit scripts (insert, delete,
// update, move) from a matching between an ancestor tree and a derived
// tree. Every operation is anchored to ancestor node identities so two
// scripts against the same ancestor can be merged.
package editscript

import (
	"github.com/graft-dev/graft/tree"
)

type OpKind int

const (
	Insert OpKind = iota
	Delete
	Update
	Move
)

func (k OpKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Update:
		return "update"
	case Move:
		return "move"
	}
	return "unknown"
}

// Op is one edit, anchored to ancestor identities.
//
//   - Delete: Node is the topmost deleted ancestor subtree.
//   - Update: Node is an ancestor leaf (or atomic subtree) whose content
//     changed; Derived holds the replacement.
//   - Move: Node moved under Parent (ancestor frame) after Pred;
//     Derived is its image in the derived tree.
//   - Insert: Derived is the topmost inserted derived subtree, spliced
//     under Parent after Pred. Parent None means root replacement.
//
// Pred is the ancestor image of the nearest preceding derived sibling
// that survives in the same parent; None anchors at the head.
type Op struct {
	Kind    OpKind
	Node    tree.NodeID
	Derived tree.NodeID
	Parent  tree.NodeID
	Pred    tree.NodeID
	Pos     int
}

// Script is an ordered edit script from an ancestor tree to a derived
// tree. Ops appear in ancestor document order, deletions before
// insertions at equal anchors, so identical inputs give identical
// scripts.
type Script struct {
	A, D *tree.Tree
	Ops  []Op
}

func (s *Script) Empty() bool { return len(s.Ops) == 0 }

// anchorPre is the ancestor preorder position an op sorts at.
func (s *Script) anchorPre(op *Op) int {
	switch op.Kind {
	case Insert:
		if op.Parent == tree.None {
			return -1
		}
		return s.A.PreIndex(op.Parent)
	default:
		return s.A.PreIndex(op.Node)
	}
}

func opRank(k OpKind) int {
	switch k {
	case Delete:
		return 0
	case Update:
		return 1
	case Move:
		return 2
	default:
		return 3
	}
}
