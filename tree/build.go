package tree

import "fmt"

// Builder accumulates nodes bottom-up: children must be added before
// their parent. Grammars construct one Builder per parse.
type Builder struct {
	lang  string
	text  []byte
	nodes []Node
}

func NewBuilder(lang string, text []byte) *Builder {
	return &Builder{lang: lang, text: text}
}

// Leaf adds a leaf node covering span.
func (b *Builder) Leaf(kind string, span Span) NodeID {
	return b.add(kind, span, nil)
}

// Node adds an interior node. Children must already exist and be given
// in document order.
func (b *Builder) Node(kind string, span Span, children ...NodeID) NodeID {
	return b.add(kind, span, children)
}

func (b *Builder) add(kind string, span Span, children []NodeID) NodeID {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, Node{
		Kind:     kind,
		Span:     span,
		Parent:   None,
		Children: children,
	})
	return id
}

// Finish validates spans and child ordering, computes hashes, heights
// and preorder indexes, and returns the immutable tree.
func (b *Builder) Finish(root NodeID) (*Tree, error) {
	t := &Tree{
		Lang:  b.lang,
		Text:  b.text,
		nodes: b.nodes,
		root:  root,
	}
	if !t.Valid(root) {
		return nil, ErrNoRoot
	}
	for id := range t.nodes {
		n := &t.nodes[id]
		if n.Span.Start < 0 || n.Span.End > len(b.text) || n.Span.Start > n.Span.End {
			return nil, fmt.Errorf("%w: node %d spans [%d,%d) of %d bytes",
				ErrBadSpan, id, n.Span.Start, n.Span.End, len(b.text))
		}
		prev := n.Span.Start
		for _, c := range n.Children {
			if c < 0 || int(c) >= id {
				return nil, fmt.Errorf("%w: node %d has child %d", ErrBadChild, id, c)
			}
			if t.nodes[c].Parent != None {
				return nil, fmt.Errorf("%w: node %d claimed twice", ErrBadChild, c)
			}
			cs := t.nodes[c].Span
			if cs.Start < prev || cs.End > n.Span.End {
				return nil, fmt.Errorf("%w: child %d of %d out of order", ErrBadSpan, c, id)
			}
			t.nodes[c].Parent = NodeID(id)
			prev = cs.End
		}
	}
	t.index()
	return t, nil
}

// index fills the hash, height and preorder tables. Nodes were appended
// bottom-up so a single forward pass sees children before parents.
func (t *Tree) index() {
	n := len(t.nodes)
	t.hash = make([]uint64, n)
	t.height = make([]int32, n)
	for id := range n {
		node := &t.nodes[id]
		h := int32(0)
		for _, c := range node.Children {
			if t.height[c]+1 > h {
				h = t.height[c] + 1
			}
		}
		t.height[id] = h
		t.hash[id] = t.hashNode(NodeID(id))
	}
	t.pre = make([]int32, n)
	i := int32(0)
	PreOrder(t, t.root, func(id NodeID) bool {
		t.pre[id] = i
		i++
		return true
	})
}
