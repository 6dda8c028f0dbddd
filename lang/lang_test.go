package lang

import (
	"errors"
	"testing"
)

func demoProfile() *Profile {
	return &Profile{
		Name:       "demo",
		Extensions: []string{"demo", "dm"},
		Kinds: map[string]Flags{
			"list": {Separator: ", "},
		},
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(demoProfile())
	if _, err := r.ByName("demo"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ByName("nope"); !errors.Is(err, ErrUnknown) {
		t.Errorf("ByName(nope): got %v, want %v", err, ErrUnknown)
	}
	for _, path := range []string{"a.demo", "dir/b.DM"} {
		if _, err := r.ByFilename(path); err != nil {
			t.Errorf("ByFilename(%q): %v", path, err)
		}
	}
	if _, err := r.ByFilename("x.txt"); !errors.Is(err, ErrUnknown) {
		t.Errorf("ByFilename(x.txt): got %v, want %v", err, ErrUnknown)
	}
}

func TestApplyConfig(t *testing.T) {
	p := demoProfile()
	r := NewRegistry(p)
	overlay := []byte(`demo:
  kinds:
    list:
      commutative: true
    block:
      atomic: true
      identity: name
`)
	if err := r.ApplyConfig(overlay); err != nil {
		t.Fatal(err)
	}
	if !p.Kinds["list"].Commutative {
		t.Error("list not commutative after overlay")
	}
	if got := p.Kinds["list"].Separator; got != ", " {
		t.Errorf("overlay clobbered separator: %q", got)
	}
	blk := p.Kinds["block"]
	if !blk.Atomic || blk.IdentityKind != "name" {
		t.Errorf("block flags = %+v", blk)
	}
}

func TestApplyConfigErrors(t *testing.T) {
	r := NewRegistry(demoProfile())
	if err := r.ApplyConfig([]byte("nope:\n  kinds: {}\n")); !errors.Is(err, ErrUnknown) {
		t.Errorf("unknown language: got %v, want %v", err, ErrUnknown)
	}
	if err := r.ApplyConfig([]byte("demo: [")); !errors.Is(err, ErrBadConfig) {
		t.Errorf("bad yaml: got %v, want %v", err, ErrBadConfig)
	}
}

func TestParseWithoutParser(t *testing.T) {
	p := demoProfile()
	if _, err := p.Parse([]byte("x")); !errors.Is(err, ErrNoParser) {
		t.Errorf("got %v, want %v", err, ErrNoParser)
	}
}
