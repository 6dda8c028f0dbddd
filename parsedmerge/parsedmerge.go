// Package parsedmerge reads files carrying git conflict markers back
// into their three constituent revisions, so an already conflicted
// merge can be retried structurally.
package parsedmerge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoConflicts means the file carries no conflict markers.
	ErrNoConflicts = errors.New("no conflict markers")
	// ErrBadMarkers means markers are present but do not nest properly.
	ErrBadMarkers = errors.New("malformed conflict markers")
)

// Chunk is either a run of resolved lines or one conflict.
type Chunk struct {
	Conflict bool

	// Resolved lines, terminators attached. Only when !Conflict.
	Lines []string

	// Conflict sides. HasBase distinguishes diff3 from compact style.
	Left    []string
	Base    []string
	Right   []string
	HasBase bool
}

// File is a parsed conflict-marked file.
type File struct {
	Chunks     []Chunk
	MarkerSize int

	LeftName  string
	BaseName  string
	RightName string
}

// Parse splits a conflict-marked file into chunks. The marker run
// length is taken from the first opening marker; files without any
// conflict return ErrNoConflicts.
func Parse(text []byte) (*File, error) {
	lines := splitLines(string(text))
	f := &File{}

	var resolved []string
	flush := func() {
		if len(resolved) > 0 {
			f.Chunks = append(f.Chunks, Chunk{Lines: resolved})
			resolved = nil
		}
	}

	i := 0
	for i < len(lines) {
		size, label := markerAt(lines[i], '<')
		if size == 0 {
			resolved = append(resolved, lines[i])
			i++
			continue
		}
		if f.MarkerSize == 0 {
			f.MarkerSize = size
			f.LeftName = label
		}
		flush()

		c := Chunk{Conflict: true}
		i++
		sect := &c.Left
		closed := false
		for i < len(lines) {
			line := lines[i]
			if s, lb := markerAt(line, '|'); s == size {
				if c.HasBase || sect == &c.Right {
					return nil, fmt.Errorf("%w: stray base marker at line %d", ErrBadMarkers, i+1)
				}
				c.HasBase = true
				if f.BaseName == "" {
					f.BaseName = lb
				}
				sect = &c.Base
				i++
				continue
			}
			if s, _ := markerAt(line, '='); s == size {
				if sect == &c.Right {
					return nil, fmt.Errorf("%w: stray separator at line %d", ErrBadMarkers, i+1)
				}
				sect = &c.Right
				i++
				continue
			}
			if s, lb := markerAt(line, '>'); s == size {
				if sect != &c.Right {
					return nil, fmt.Errorf("%w: closing marker before separator at line %d", ErrBadMarkers, i+1)
				}
				if f.RightName == "" {
					f.RightName = lb
				}
				i++
				closed = true
				break
			}
			if s, _ := markerAt(line, '<'); s == size {
				return nil, fmt.Errorf("%w: nested conflict at line %d", ErrBadMarkers, i+1)
			}
			*sect = append(*sect, line)
			i++
		}
		if !closed {
			return nil, fmt.Errorf("%w: unterminated conflict", ErrBadMarkers)
		}
		f.Chunks = append(f.Chunks, c)
	}
	flush()

	if f.MarkerSize == 0 {
		return nil, ErrNoConflicts
	}
	return f, nil
}

// CountConflicts returns the number of conflict chunks.
func (f *File) CountConflicts() int {
	n := 0
	for i := range f.Chunks {
		if f.Chunks[i].Conflict {
			n++
		}
	}
	return n
}

// Mass is the byte count inside conflict regions, markers excluded.
func (f *File) Mass() int {
	m := 0
	for i := range f.Chunks {
		c := &f.Chunks[i]
		if !c.Conflict {
			continue
		}
		for _, s := range [][]string{c.Left, c.Base, c.Right} {
			for _, l := range s {
				m += len(l)
			}
		}
	}
	return m
}

// HasBaseSections reports whether every conflict carries a base
// section. Without them the ancestor cannot be reconstructed and a
// structural retry is off the table.
func (f *File) HasBaseSections() bool {
	for i := range f.Chunks {
		if f.Chunks[i].Conflict && !f.Chunks[i].HasBase {
			return false
		}
	}
	return true
}

// Revisions reconstructs the base, left and right file contents.
// Resolved chunks are shared verbatim by all three.
func (f *File) Revisions() (base, left, right []byte) {
	var b, l, r strings.Builder
	for i := range f.Chunks {
		c := &f.Chunks[i]
		if !c.Conflict {
			for _, line := range c.Lines {
				b.WriteString(line)
				l.WriteString(line)
				r.WriteString(line)
			}
			continue
		}
		for _, line := range c.Base {
			b.WriteString(line)
		}
		for _, line := range c.Left {
			l.WriteString(line)
		}
		for _, line := range c.Right {
			r.WriteString(line)
		}
	}
	return []byte(b.String()), []byte(l.String()), []byte(r.String())
}

// markerAt reports the marker run length when line opens with a run of
// ch of length >= 4 followed by end of line or a space, plus the label
// after it. Returns 0 otherwise.
func markerAt(line string, ch byte) (int, string) {
	n := 0
	for n < len(line) && line[n] == ch {
		n++
	}
	if n < 4 {
		return 0, ""
	}
	rest := strings.TrimRight(line[n:], "\n")
	if rest == "" {
		return n, ""
	}
	if rest[0] != ' ' {
		return 0, ""
	}
	return n, strings.TrimSpace(rest)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
