package tree

// PreOrder visits the subtree at root in document order. visit returns
// whether to descend into the node's children. The traversal is
// iterative: input nesting depth must not grow the call stack.
func PreOrder(t *Tree, root NodeID, visit func(NodeID) bool) {
	if root == None {
		return
	}
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(id) {
			continue
		}
		children := t.nodes[id].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// PostOrder visits children before parents.
func PostOrder(t *Tree, root NodeID, visit func(NodeID)) {
	if root == None {
		return
	}
	type frame struct {
		id   NodeID
		next int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		children := t.nodes[f.id].Children
		if f.next < len(children) {
			c := children[f.next]
			f.next++
			stack = append(stack, frame{c, 0})
			continue
		}
		visit(f.id)
		stack = stack[:len(stack)-1]
	}
}
