package matcher

import (
	"errors"
	"testing"

	"github.com/graft-dev/graft/lang/json"
	"github.com/graft-dev/graft/tree"
)

func parse(t *testing.T, src string) *tree.Tree {
	t.Helper()
	tr, err := json.Profile().Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return tr
}

func match(t *testing.T, base, derived string) *Matching {
	t.Helper()
	a, d := parse(t, base), parse(t, derived)
	m, err := New(json.Profile()).Match(a, d)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMatchIdentical(t *testing.T) {
	src := `{"a": 1, "b": [2, 3]}`
	m := match(t, src, src)
	if m.Count() != m.A.Len() {
		t.Fatalf("matched %d of %d nodes", m.Count(), m.A.Len())
	}
	tree.PreOrder(m.A, m.A.Root(), func(an tree.NodeID) bool {
		dn := m.OfA(an)
		if dn == tree.None {
			t.Errorf("node %d unmatched", an)
			return true
		}
		if got, want := m.D.Kind(dn), m.A.Kind(an); got != want {
			t.Errorf("node %d kind %q matched to %q", an, want, got)
		}
		return true
	})
}

func TestMatchAcrossEdit(t *testing.T) {
	// The edited member has no exact hash match; the recovery pass must
	// still pair it with its counterpart.
	m := match(t, `{"a": 1, "b": 2}`, `{"a": 10, "b": 2}`)
	if m.Count() != m.A.Len() {
		t.Fatalf("matched %d of %d nodes", m.Count(), m.A.Len())
	}
}

func TestMatchLeavesInsertionUnmatched(t *testing.T) {
	m := match(t, `{"a": 1}`, `{"a": 1, "b": 2}`)
	if m.Count() != m.A.Len() {
		t.Fatalf("matched %d of %d ancestor nodes", m.Count(), m.A.Len())
	}
	unmatched := 0
	tree.PreOrder(m.D, m.D.Root(), func(dn tree.NodeID) bool {
		if !m.HasD(dn) {
			unmatched++
		}
		return true
	})
	// member b, its key and its value
	if unmatched != 3 {
		t.Fatalf("got %d unmatched derived nodes, want 3", unmatched)
	}
}

func TestMatchReorderedArray(t *testing.T) {
	m := match(t, `[11, 22, 33]`, `[33, 11, 22]`)
	a, d := m.A, m.D
	for _, an := range a.Children(a.Root()) {
		dn := m.OfA(an)
		if dn == tree.None {
			t.Fatalf("item %q unmatched", a.TextOf(an))
		}
		if got, want := string(d.TextOf(dn)), string(a.TextOf(an)); got != want {
			t.Errorf("item %q matched to %q", want, got)
		}
	}
}

func TestMatchRespectsIdentityKeys(t *testing.T) {
	// The populated array migrates between members; content overlap must
	// not pair the donor member with the receiving one.
	m := match(t, `{"xs": [77], "ys": []}`, `{"xs": [], "ys": [77]}`)
	a, d := m.A, m.D
	for _, an := range a.Children(a.Root()) {
		dn := m.OfA(an)
		if dn == tree.None {
			t.Fatalf("member %q unmatched", a.TextOf(an))
		}
		ak := string(a.TextOf(a.Children(an)[0]))
		dk := string(d.TextOf(d.Children(dn)[0]))
		if ak != dk {
			t.Errorf("member %s matched across keys to %s", ak, dk)
		}
	}
}

func TestMatchAtomicIsOpaque(t *testing.T) {
	p := json.Profile()
	flags := p.Kinds["array"]
	flags.Atomic = true
	p.Kinds["array"] = flags

	// Differing contents so the whole-tree exact match cannot pair the
	// arrays; they must meet through the atomic-aware passes.
	a := parse(t, `{"xs": [1, 2]}`)
	d := parse(t, `{"xs": [1, 3]}`)
	m, err := New(p).Match(a, d)
	if err != nil {
		t.Fatal(err)
	}
	tree.PreOrder(a, a.Root(), func(an tree.NodeID) bool {
		if a.Kind(an) != "array" {
			return true
		}
		if !m.HasA(an) {
			t.Error("atomic array itself should match")
		}
		for _, c := range a.Children(an) {
			if m.HasA(c) {
				t.Error("descendant of atomic node matched")
			}
		}
		return false
	})
}

func TestPutRejectsViolations(t *testing.T) {
	a := parse(t, `{"a": 1}`)
	d := parse(t, `{"a": 1}`)
	m := NewMatching(a, d)
	if err := m.Put(a.Root(), d.Root()); err != nil {
		t.Fatal(err)
	}
	if err := m.Put(a.Root(), d.Root()); !errors.Is(err, ErrInjective) {
		t.Errorf("double put: got %v, want %v", err, ErrInjective)
	}
	member := a.Children(a.Root())[0]
	if err := m.Put(member, d.Root()); !errors.Is(err, ErrKind) {
		t.Errorf("kind clash: got %v, want %v", err, ErrKind)
	}
}
