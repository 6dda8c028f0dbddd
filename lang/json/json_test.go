package json

import (
	"errors"
	"testing"
)

func TestParseSpans(t *testing.T) {
	src := `{"a": 1, "b": [true, null]}`
	tr, err := Profile().Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	root := tr.Root()
	if got := tr.Kind(root); got != "object" {
		t.Fatalf("root kind %q, want object", got)
	}
	if got := string(tr.TextOf(root)); got != src {
		t.Fatalf("root text %q, want %q", got, src)
	}
	members := tr.Children(root)
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if got := string(tr.TextOf(members[0])); got != `"a": 1` {
		t.Errorf("member 0 text %q", got)
	}
	bval := tr.Children(members[1])[1]
	if got := tr.Kind(bval); got != "array" {
		t.Fatalf("b value kind %q, want array", got)
	}
	items := tr.Children(bval)
	if len(items) != 2 {
		t.Fatalf("got %d array items, want 2", len(items))
	}
	for i, want := range []string{"true", "null"} {
		if got := string(tr.TextOf(items[i])); got != want {
			t.Errorf("item %d text %q, want %q", i, got, want)
		}
		if got := tr.Kind(items[i]); got != "literal" {
			t.Errorf("item %d kind %q, want literal", i, got)
		}
	}
}

func TestParseKeepsWhitespaceOutOfSpans(t *testing.T) {
	src := "{\n  \"k\": [1, 2]\n}\n"
	tr, err := Profile().Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	m := tr.Children(tr.Root())[0]
	if got := string(tr.TextOf(m)); got != `"k": [1, 2]` {
		t.Errorf("member text %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		``,
		`{`,
		`{"a" 1}`,
		`{"a": 1,}`,
		`[1 2]`,
		`{"a": 1} x`,
		`"unterminated`,
		`{"a": @}`,
	}
	for _, in := range bad {
		if _, err := Profile().Parse([]byte(in)); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q): got %v, want %v", in, err, ErrSyntax)
		}
	}
}

func TestIdentity(t *testing.T) {
	p := Profile()
	tr, err := p.Parse([]byte(`{"name": "x"}`))
	if err != nil {
		t.Fatal(err)
	}
	m := tr.Children(tr.Root())[0]
	id, ok := p.IdentityOf(tr, m)
	if !ok || id != `"name"` {
		t.Fatalf("IdentityOf = %q, %v; want %q, true", id, ok, `"name"`)
	}
}
