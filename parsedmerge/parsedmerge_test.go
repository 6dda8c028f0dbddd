package parsedmerge

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const marked = `{
"a": 1,
<<<<<<< ours
"b": 2
||||||| base
"b": 1
=======
"b": 3
>>>>>>> theirs
}
`

func TestParseRoundTrip(t *testing.T) {
	f, err := Parse([]byte(marked))
	if err != nil {
		t.Fatal(err)
	}
	if f.MarkerSize != 7 {
		t.Errorf("marker size %d, want 7", f.MarkerSize)
	}
	if f.LeftName != "ours" || f.BaseName != "base" || f.RightName != "theirs" {
		t.Errorf("labels = %q %q %q", f.LeftName, f.BaseName, f.RightName)
	}
	if got := f.CountConflicts(); got != 1 {
		t.Fatalf("conflicts = %d, want 1", got)
	}
	if !f.HasBaseSections() {
		t.Error("base section not detected")
	}
	base, left, right := f.Revisions()
	wantBase := "{\n\"a\": 1,\n\"b\": 1\n}\n"
	wantLeft := "{\n\"a\": 1,\n\"b\": 2\n}\n"
	wantRight := "{\n\"a\": 1,\n\"b\": 3\n}\n"
	if diff := cmp.Diff(wantBase, string(base)); diff != "" {
		t.Errorf("base mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantLeft, string(left)); diff != "" {
		t.Errorf("left mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRight, string(right)); diff != "" {
		t.Errorf("right mismatch (-want +got):\n%s", diff)
	}
}

func TestMass(t *testing.T) {
	f, err := Parse([]byte(marked))
	if err != nil {
		t.Fatal(err)
	}
	// "b": 2, "b": 1 and "b": 3, one line each with newline
	if got := f.Mass(); got != 3*len("\"b\": 2\n") {
		t.Errorf("mass = %d", got)
	}
}

func TestParseCompactStyle(t *testing.T) {
	compact := strings.Join([]string{
		"<<<<<<< a",
		"x",
		"=======",
		"y",
		">>>>>>> b",
		"",
	}, "\n")
	f, err := Parse([]byte(compact))
	if err != nil {
		t.Fatal(err)
	}
	if f.HasBaseSections() {
		t.Error("compact conflict reported a base section")
	}
	base, left, right := f.Revisions()
	if string(base) != "" || string(left) != "x\n" || string(right) != "y\n" {
		t.Errorf("revisions = %q %q %q", base, left, right)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"clean", "a\nb\n", ErrNoConflicts},
		{"unterminated", "<<<<<<< x\na\n=======\nb\n", ErrBadMarkers},
		{"missing separator", "<<<<<<< x\na\n>>>>>>> y\n", ErrBadMarkers},
		{"nested", "<<<<<<< x\n<<<<<<< y\n=======\n>>>>>>> z\n", ErrBadMarkers},
		{"double base", "<<<<<<< x\n||||||| b\n||||||| b\n=======\n>>>>>>> y\n", ErrBadMarkers},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.in)); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestMarkerSizeDetection(t *testing.T) {
	small := "<<<< L\nx\n====\ny\n>>>> R\n"
	f, err := Parse([]byte(small))
	if err != nil {
		t.Fatal(err)
	}
	if f.MarkerSize != 4 {
		t.Errorf("marker size %d, want 4", f.MarkerSize)
	}
	// seven-run markers inside a four-run conflict are content
	if f.CountConflicts() != 1 {
		t.Errorf("conflicts = %d", f.CountConflicts())
	}
}
