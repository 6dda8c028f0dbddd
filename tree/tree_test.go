package tree

import (
	"testing"
)

// buildList builds a tree for a bracketed list like "[a, b]" by hand.
func buildList(t *testing.T, text string, items ...Span) *Tree {
	t.Helper()
	b := NewBuilder("test", []byte(text))
	ids := make([]NodeID, len(items))
	for i, sp := range items {
		ids[i] = b.Leaf("item", sp)
	}
	root := b.Node("list", Span{0, len(text)}, ids...)
	tr, err := b.Finish(root)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return tr
}

func TestBuildAndWalk(t *testing.T) {
	tr := buildList(t, "[a, b]", Span{1, 2}, Span{4, 5})
	if tr.Len() != 3 {
		t.Fatalf("got %d nodes", tr.Len())
	}
	root := tr.Root()
	if tr.Kind(root) != "list" || tr.IsLeaf(root) {
		t.Fatalf("bad root")
	}
	var pre []string
	PreOrder(tr, root, func(id NodeID) bool {
		pre = append(pre, tr.Kind(id))
		return true
	})
	want := []string{"list", "item", "item"}
	for i := range want {
		if pre[i] != want[i] {
			t.Fatalf("preorder %v", pre)
		}
	}
	var post []string
	PostOrder(tr, root, func(id NodeID) {
		post = append(post, tr.Kind(id))
	})
	if post[len(post)-1] != "list" {
		t.Fatalf("postorder %v", post)
	}
	a := tr.Children(root)[0]
	bID := tr.Children(root)[1]
	if string(tr.TextOf(a)) != "a" || string(tr.TextOf(bID)) != "b" {
		t.Fatalf("leaf text %q %q", tr.TextOf(a), tr.TextOf(bID))
	}
	if tr.PrevSibling(bID) != a || tr.PrevSibling(a) != None {
		t.Fatalf("siblings")
	}
	if !tr.IsAncestorOf(root, a) || tr.IsAncestorOf(a, root) {
		t.Fatalf("ancestry")
	}
	if tr.PreIndex(root) != 0 || tr.PreIndex(a) != 1 || tr.PreIndex(bID) != 2 {
		t.Fatalf("preorder index")
	}
}

func TestHashIsomorphism(t *testing.T) {
	// Same structure and leaf text, different surrounding bytes.
	t1 := buildList(t, "[a, b]", Span{1, 2}, Span{4, 5})
	t2 := buildList(t, "[ a,b ]", Span{2, 3}, Span{4, 5})
	if t1.Hash(t1.Root()) != t2.Hash(t2.Root()) {
		t.Fatalf("hash should ignore whitespace outside spans")
	}
	if !Isomorphic(t1, t1.Root(), t2, t2.Root()) {
		t.Fatalf("expected isomorphic")
	}
	t3 := buildList(t, "[a, c]", Span{1, 2}, Span{4, 5})
	if Isomorphic(t1, t1.Root(), t3, t3.Root()) {
		t.Fatalf("different leaf text cannot be isomorphic")
	}
	if t1.Height(t1.Root()) != 1 || t1.Height(t1.Children(t1.Root())[0]) != 0 {
		t.Fatalf("heights")
	}
}

func TestFinishRejectsBadSpans(t *testing.T) {
	b := NewBuilder("test", []byte("ab"))
	child := b.Leaf("item", Span{1, 2})
	root := b.Node("list", Span{0, 1}, child) // child exceeds parent
	if _, err := b.Finish(root); err == nil {
		t.Fatalf("expected span error")
	}

	b = NewBuilder("test", []byte("ab"))
	x := b.Leaf("item", Span{1, 2})
	y := b.Leaf("item", Span{0, 1})
	root = b.Node("list", Span{0, 2}, x, y) // out of order
	if _, err := b.Finish(root); err == nil {
		t.Fatalf("expected ordering error")
	}
}
