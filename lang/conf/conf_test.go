package conf

import (
	"errors"
	"testing"
)

const sample = `load("//tools:defs.bzl", "lib")

# util library
lib(
    name = "util",
    deps = [
        "//a",
        "//b",
    ],
)
`

func TestParseSample(t *testing.T) {
	tr, err := Profile().Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	root := tr.Root()
	if got := tr.Kind(root); got != "source_file" {
		t.Fatalf("root kind %q", got)
	}
	stmts := tr.Children(root)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	lib := stmts[1]
	if got := tr.Kind(lib); got != "call" {
		t.Fatalf("statement kind %q, want call", got)
	}
	kids := tr.Children(lib)
	// callee ident plus two kwargs
	if len(kids) != 3 {
		t.Fatalf("call has %d children, want 3", len(kids))
	}
	if got := string(tr.TextOf(kids[0])); got != "lib" {
		t.Errorf("callee %q", got)
	}
	deps := kids[2]
	if got := tr.Kind(deps); got != "kwarg" {
		t.Fatalf("deps kind %q", got)
	}
	list := tr.Children(deps)[1]
	if got := tr.Kind(list); got != "list" {
		t.Fatalf("deps value kind %q", got)
	}
	items := tr.Children(list)
	if len(items) != 2 {
		t.Fatalf("got %d deps, want 2", len(items))
	}
	if got := string(tr.TextOf(items[1])); got != `"//b"` {
		t.Errorf("dep 1 text %q", got)
	}
}

func TestCallIdentity(t *testing.T) {
	p := Profile()
	tr, err := p.Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	lib := tr.Children(tr.Root())[1]
	id, ok := p.IdentityOf(tr, lib)
	if !ok || id != "lib" {
		t.Fatalf("IdentityOf = %q, %v; want lib, true", id, ok)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		`lib`,
		`lib(name = )`,
		`lib(name = "x"`,
		`= "x"`,
		`lib("a" "b")`,
	}
	for _, in := range bad {
		if _, err := Profile().Parse([]byte(in)); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q): got %v, want %v", in, err, ErrSyntax)
		}
	}
}
