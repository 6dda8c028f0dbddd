package tree

// NodeID addresses a node within one tree's arena.
type NodeID int32

// None is the absent node.
const None NodeID = -1

// Span is a half-open byte range into the owning revision's text.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// Node is one arena entry. Children are ordered; leaves have none.
type Node struct {
	Kind     string
	Span     Span
	Parent   NodeID
	Children []NodeID
}

// Tree is an ordered rooted tree over a single revision's text.
// It is immutable after construction.
type Tree struct {
	Lang string
	Text []byte

	nodes  []Node
	root   NodeID
	hash   []uint64
	height []int32
	pre    []int32
}

func (t *Tree) Root() NodeID { return t.root }
func (t *Tree) Len() int     { return len(t.nodes) }

func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) Kind(id NodeID) string       { return t.nodes[id].Kind }
func (t *Tree) SpanOf(id NodeID) Span       { return t.nodes[id].Span }
func (t *Tree) Parent(id NodeID) NodeID     { return t.nodes[id].Parent }
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].Children }
func (t *Tree) IsLeaf(id NodeID) bool       { return len(t.nodes[id].Children) == 0 }

// Hash is the structural content hash of the subtree at id. It combines
// kind, leaf text and children hashes; it ignores surrounding whitespace.
func (t *Tree) Hash(id NodeID) uint64 { return t.hash[id] }

// Height is 0 for leaves.
func (t *Tree) Height(id NodeID) int { return int(t.height[id]) }

// PreIndex is the node's position in a preorder traversal of the tree,
// used for positional tie-breaking.
func (t *Tree) PreIndex(id NodeID) int { return int(t.pre[id]) }

// TextOf returns the exact bytes of the node's span.
func (t *Tree) TextOf(id NodeID) []byte {
	s := t.nodes[id].Span
	return t.Text[s.Start:s.End]
}

// ChildIndex returns the position of id among its parent's children,
// or -1 for the root.
func (t *Tree) ChildIndex(id NodeID) int {
	p := t.nodes[id].Parent
	if p == None {
		return -1
	}
	for i, c := range t.nodes[p].Children {
		if c == id {
			return i
		}
	}
	return -1
}

// PrevSibling returns the sibling immediately before id, or None.
func (t *Tree) PrevSibling(id NodeID) NodeID {
	i := t.ChildIndex(id)
	if i <= 0 {
		return None
	}
	return t.nodes[t.nodes[id].Parent].Children[i-1]
}

// IsAncestorOf reports whether a is a strict ancestor of b.
func (t *Tree) IsAncestorOf(a, b NodeID) bool {
	for p := t.nodes[b].Parent; p != None; p = t.nodes[p].Parent {
		if p == a {
			return true
		}
	}
	return false
}

// SubtreeSize counts the nodes in the subtree at id, including id.
func (t *Tree) SubtreeSize(id NodeID) int {
	n := 0
	PreOrder(t, id, func(NodeID) bool {
		n++
		return true
	})
	return n
}

// Isomorphic reports whether the subtrees at (a in ta) and (b in tb) have
// identical structure: same kinds, same child arities and same leaf text.
// Hashes gate the comparison but equality is verified structurally, since
// a merged file must never depend on a 64-bit hash being collision free.
func Isomorphic(ta *Tree, a NodeID, tb *Tree, b NodeID) bool {
	if ta.hash[a] != tb.hash[b] {
		return false
	}
	type pair struct{ a, b NodeID }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		na, nb := &ta.nodes[p.a], &tb.nodes[p.b]
		if na.Kind != nb.Kind || len(na.Children) != len(nb.Children) {
			return false
		}
		if len(na.Children) == 0 {
			if string(ta.TextOf(p.a)) != string(tb.TextOf(p.b)) {
				return false
			}
			continue
		}
		for i := range na.Children {
			stack = append(stack, pair{na.Children[i], nb.Children[i]})
		}
	}
	return true
}
