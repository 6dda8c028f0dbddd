package merge

import (
	"github.com/graft-dev/graft/tree"
)

// Minimize narrows every conflict in the result to the smallest
// enclosing disagreement: while both sides offer a single same-kind
// node whose children agree except at exactly one position, the
// agreeing children are hoisted out of the conflict and the conflict
// re-anchors at the disagreeing child. Running it again is a no-op.
func Minimize(res *Result) {
	if res.Root == nil {
		return
	}
	var walk func(n *MergedNode)
	walk = func(n *MergedNode) {
		if n.Conflict != nil {
			minimizeNode(res, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(res.Root)
}

func minimizeNode(res *Result, n *MergedNode) {
	for {
		c := n.Conflict
		if c == nil || len(c.LeftContent) != 1 || len(c.RightContent) != 1 {
			return
		}
		ln, rn := c.LeftContent[0], c.RightContent[0]
		if ln.Conflict != nil || rn.Conflict != nil || ln.Kind != rn.Kind {
			return
		}
		lch := childrenOf(res, ln)
		rch := childrenOf(res, rn)
		if len(lch) == 0 || len(lch) != len(rch) {
			return
		}
		diffIdx := -1
		for i := range lch {
			if contentEqual(res, lch[i], rch[i]) {
				continue
			}
			if diffIdx >= 0 {
				return
			}
			diffIdx = i
		}
		if diffIdx < 0 {
			return
		}

		// Hoist: n becomes a mixed node framed by the agreeing shell,
		// with the conflict narrowed (in place, so the result's conflict
		// list stays valid) to the disagreeing child.
		anchor := c.Anchor
		childSrc := tree.None
		var baseContent []*MergedNode
		if len(c.BaseContent) == 1 {
			if bch := childrenOf(res, c.BaseContent[0]); len(bch) == len(lch) {
				baseContent = []*MergedNode{bch[diffIdx]}
				if bch[diffIdx].Exact && bch[diffIdx].Rev == Base {
					anchor = bch[diffIdx].Src
					childSrc = anchor
				}
			}
		}

		frame := ln
		if len(c.BaseContent) == 1 && c.BaseContent[0].Exact && c.BaseContent[0].Rev == Base {
			frame = c.BaseContent[0]
		}
		c.Anchor = anchor
		c.Pred = tree.None
		c.BaseContent = baseContent
		c.LeftContent = []*MergedNode{lch[diffIdx]}
		c.RightContent = []*MergedNode{rch[diffIdx]}

		child := &MergedNode{Rev: Base, Src: childSrc, Kind: lch[diffIdx].Kind, Conflict: c}
		n.Conflict = nil
		n.Exact = false
		n.Rev = frame.Rev
		n.Src = frame.Src
		n.Kind = ln.Kind
		n.Children = make([]*MergedNode, len(lch))
		copy(n.Children, lch)
		n.Children[diffIdx] = child

		n = child
	}
}

// childrenOf expands a merged node's children, materializing exact
// subtrees one level.
func childrenOf(res *Result, n *MergedNode) []*MergedNode {
	if !n.Exact {
		return n.Children
	}
	t := res.TreeOf(n.Rev)
	ch := t.Children(n.Src)
	out := make([]*MergedNode, len(ch))
	for i, c := range ch {
		out[i] = exact(n.Rev, t, c)
	}
	return out
}

// contentEqual reports whether two merged subtrees denote the same
// syntax, ignoring which revision they are drawn from.
func contentEqual(res *Result, x, y *MergedNode) bool {
	if x.Conflict != nil || y.Conflict != nil {
		return false
	}
	if x.Exact && y.Exact {
		return tree.Isomorphic(res.TreeOf(x.Rev), x.Src, res.TreeOf(y.Rev), y.Src)
	}
	if x.Kind != y.Kind {
		return false
	}
	xc := childrenOf(res, x)
	yc := childrenOf(res, y)
	if len(xc) != len(yc) {
		return false
	}
	if len(xc) == 0 {
		// two leaves from different shapes; compare bytes
		return string(leafText(res, x)) == string(leafText(res, y))
	}
	for i := range xc {
		if !contentEqual(res, xc[i], yc[i]) {
			return false
		}
	}
	return true
}

func leafText(res *Result, n *MergedNode) []byte {
	if !n.Exact {
		return nil
	}
	return res.TreeOf(n.Rev).TextOf(n.Src)
}
