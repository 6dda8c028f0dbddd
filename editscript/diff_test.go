package editscript

import (
	"testing"

	"github.com/graft-dev/graft/lang/json"
	"github.com/graft-dev/graft/matcher"
	"github.com/graft-dev/graft/tree"
)

func diffOf(t *testing.T, base, derived string) *Script {
	t.Helper()
	prof := json.Profile()
	a, err := prof.Parse([]byte(base))
	if err != nil {
		t.Fatal(err)
	}
	d, err := prof.Parse([]byte(derived))
	if err != nil {
		t.Fatal(err)
	}
	m, err := matcher.New(prof).Match(a, d)
	if err != nil {
		t.Fatal(err)
	}
	return Diff(m, prof)
}

func kinds(s *Script) []OpKind {
	out := make([]OpKind, len(s.Ops))
	for i := range s.Ops {
		out[i] = s.Ops[i].Kind
	}
	return out
}

func TestDiffIdentical(t *testing.T) {
	s := diffOf(t, `{"a": 1, "b": [2, 3]}`, `{"a": 1, "b": [2, 3]}`)
	if !s.Empty() {
		t.Fatalf("got %d ops for identical trees: %v", len(s.Ops), kinds(s))
	}
}

func TestDiffWhitespaceOnly(t *testing.T) {
	s := diffOf(t, `{"a":1}`, "{\n  \"a\": 1\n}\n")
	if !s.Empty() {
		t.Fatalf("formatting change produced ops: %v", kinds(s))
	}
}

func TestDiffUpdate(t *testing.T) {
	s := diffOf(t, `{"a": 1, "b": 2}`, `{"a": 10, "b": 2}`)
	if len(s.Ops) != 1 || s.Ops[0].Kind != Update {
		t.Fatalf("ops = %v, want one update", kinds(s))
	}
	op := s.Ops[0]
	if got := string(s.A.TextOf(op.Node)); got != "1" {
		t.Errorf("updated node text %q, want 1", got)
	}
	if got := string(s.D.TextOf(op.Derived)); got != "10" {
		t.Errorf("replacement text %q, want 10", got)
	}
}

func TestDiffTopmostDelete(t *testing.T) {
	s := diffOf(t, `{"a": 1, "b": [2, 3]}`, `{"a": 1}`)
	if len(s.Ops) != 1 || s.Ops[0].Kind != Delete {
		t.Fatalf("ops = %v, want one delete", kinds(s))
	}
	if got := s.A.Kind(s.Ops[0].Node); got != "member" {
		t.Errorf("deleted kind %q, want member", got)
	}
}

func TestDiffInsertAnchor(t *testing.T) {
	s := diffOf(t, `{"a": 1}`, `{"a": 1, "b": 2}`)
	if len(s.Ops) != 1 || s.Ops[0].Kind != Insert {
		t.Fatalf("ops = %v, want one insert", kinds(s))
	}
	op := s.Ops[0]
	if op.Parent != s.A.Root() {
		t.Errorf("insert parent %d, want root", op.Parent)
	}
	if got := string(s.A.TextOf(op.Pred)); got != `"a": 1` {
		t.Errorf("insert pred %q, want the existing member", got)
	}
	if got := string(s.D.TextOf(op.Derived)); got != `"b": 2` {
		t.Errorf("inserted subtree %q", got)
	}
}

func TestDiffCommutativeReorderIsNoop(t *testing.T) {
	s := diffOf(t, `{"a": 1, "b": 2}`, `{"b": 2, "a": 1}`)
	if !s.Empty() {
		t.Fatalf("object reorder produced ops: %v", kinds(s))
	}
}

func TestDiffArrayReorderMove(t *testing.T) {
	s := diffOf(t, `[11, 22, 33]`, `[33, 11, 22]`)
	if len(s.Ops) != 1 || s.Ops[0].Kind != Move {
		t.Fatalf("ops = %v, want one move", kinds(s))
	}
	op := s.Ops[0]
	if got := string(s.A.TextOf(op.Node)); got != "33" {
		t.Errorf("moved node %q, want 33", got)
	}
	if op.Pred != tree.None || op.Pos != 0 {
		t.Errorf("move anchor pred=%d pos=%d, want head", op.Pred, op.Pos)
	}
}

func TestDiffCrossParentMove(t *testing.T) {
	// The populated array is exact-matched across members, so it moves
	// from under "xs" to under "ys"; the empty arrays swap as a
	// delete/insert pair.
	s := diffOf(t, `{"xs": [77], "ys": []}`, `{"xs": [], "ys": [77]}`)
	var moves int
	for i := range s.Ops {
		if s.Ops[i].Kind != Move {
			continue
		}
		moves++
		op := s.Ops[i]
		if got := string(s.A.TextOf(op.Node)); got != "[77]" {
			t.Errorf("moved node %q, want [77]", got)
		}
		if got := s.A.Kind(op.Parent); got != "member" {
			t.Errorf("move destination kind %q, want member", got)
		}
	}
	if moves != 1 {
		t.Fatalf("ops = %v, want exactly one move", kinds(s))
	}
}
