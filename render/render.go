// Package render turns a merged tree back into source text, copying
// untouched regions verbatim from their revision and formatting
// conflicts with git-style markers.
package render

import (
	"bytes"
	"strings"

	"github.com/graft-dev/graft/debug"
	"github.com/graft-dev/graft/merge"
	"github.com/graft-dev/graft/tree"
)

// Options controls marker formatting.
type Options struct {
	// MarkerSize is the marker run length; 0 means 7.
	MarkerSize int
	// Revision labels after the markers. Empty labels are omitted.
	BaseName  string
	LeftName  string
	RightName string
	// Compact suppresses the base section of each conflict, matching
	// git's default "merge" style instead of diff3.
	Compact bool
}

func (o Options) size() int {
	if o.MarkerSize <= 0 {
		return 7
	}
	return o.MarkerSize
}

// Stats summarizes the rendered conflicts. Mass is the byte count
// inside conflict regions, markers excluded; it orders outcomes by how
// much manual work remains.
type Stats struct {
	Conflicts int
	Mass      int
}

// Render prints the merge result. Subtrees taken whole from one
// revision reproduce that revision's bytes exactly.
func Render(res *merge.Result, opts Options) ([]byte, Stats, error) {
	r := renderer{res: res, opts: opts}
	if res.Root == nil {
		return nil, Stats{}, nil
	}
	if res.Root.Exact {
		// Whole-file copy, including trivia outside the root span.
		t := res.TreeOf(res.Root.Rev)
		out := append([]byte(nil), t.Text...)
		return out, Stats{}, nil
	}
	if err := r.node(res.Root, true); err != nil {
		return nil, Stats{}, err
	}
	out := r.buf.Bytes()
	if debug.Render() {
		debug.Logf("render: %d bytes, %d conflicts (%d conflicted bytes)\n",
			len(out), r.conflicts, r.mass)
	}
	return out, Stats{Conflicts: r.conflicts, Mass: r.mass}, nil
}

type renderer struct {
	res  *merge.Result
	opts Options
	buf  bytes.Buffer

	conflicts int
	mass      int
}

func (r *renderer) node(n *merge.MergedNode, root bool) error {
	switch {
	case n.Conflict != nil:
		return r.conflict(n.Conflict)
	case n.Exact:
		r.buf.Write(r.res.TreeOf(n.Rev).TextOf(n.Src))
		return nil
	default:
		return r.frame(n, root)
	}
}

// frame renders a mixed node: the frame revision supplies the header,
// footer and fallback separators, each child supplies its own bytes.
func (r *renderer) frame(n *merge.MergedNode, root bool) error {
	t := r.res.TreeOf(n.Rev)
	span := t.SpanOf(n.Src)
	if root {
		span = tree.Span{Start: 0, End: len(t.Text)}
	}
	fch := t.Children(n.Src)
	flags := r.res.Profile.FlagsOf(n.Kind)

	if len(fch) == 0 {
		// A childless frame gaining children: synthesize delimiters.
		r.buf.WriteString(flags.Open)
		for i, c := range n.Children {
			if i > 0 {
				r.buf.WriteString(r.joint(c, flags.Separator))
			}
			if err := r.node(c, false); err != nil {
				return err
			}
		}
		r.buf.WriteString(flags.Close)
		return nil
	}

	header := t.Text[span.Start:t.SpanOf(fch[0]).Start]
	footer := t.Text[t.SpanOf(fch[len(fch)-1]).End:span.End]
	sep := flags.Separator
	if sep == "" && len(fch) > 1 {
		sep = string(t.Text[t.SpanOf(fch[0]).End:t.SpanOf(fch[1]).Start])
	}

	r.buf.Write(header)
	for i, c := range n.Children {
		if i > 0 {
			r.buf.WriteString(r.joint(c, sep))
		}
		if err := r.node(c, false); err != nil {
			return err
		}
	}
	r.buf.Write(footer)
	return nil
}

// joint picks the text placed before a child at an interior position.
// A child that still has a position in some revision carries the
// authentic gap preceding it there, separators included; otherwise the
// language separator stands in.
func (r *renderer) joint(c *merge.MergedNode, fallback string) string {
	if c.Src != tree.None {
		t := r.res.TreeOf(c.Rev)
		if prev := t.PrevSibling(c.Src); prev != tree.None {
			return string(t.Text[t.SpanOf(prev).End:t.SpanOf(c.Src).Start])
		}
	}
	return fallback
}

func (r *renderer) conflict(c *merge.Conflict) error {
	r.conflicts++
	size := r.opts.size()

	left, err := r.sub(c.LeftContent)
	if err != nil {
		return err
	}
	right, err := r.sub(c.RightContent)
	if err != nil {
		return err
	}
	var base []byte
	if !r.opts.Compact && c.BaseContent != nil {
		base, err = r.sub(c.BaseContent)
		if err != nil {
			return err
		}
	}

	r.newlineBoundary()
	r.marker('<', size, r.opts.LeftName)
	r.section(left)
	if !r.opts.Compact && c.BaseContent != nil {
		r.marker('|', size, r.opts.BaseName)
		r.section(base)
	}
	r.marker('=', size, "")
	r.section(right)
	r.marker('>', size, r.opts.RightName)
	return nil
}

// sub renders a conflict side into its own buffer.
func (r *renderer) sub(nodes []*merge.MergedNode) ([]byte, error) {
	sr := renderer{res: r.res, opts: r.opts}
	for i, n := range nodes {
		if i > 0 {
			sr.buf.WriteString(sr.joint(n, "\n"))
		}
		if err := sr.node(n, false); err != nil {
			return nil, err
		}
	}
	r.conflicts += sr.conflicts
	r.mass += sr.mass
	return sr.buf.Bytes(), nil
}

func (r *renderer) marker(ch byte, size int, label string) {
	r.buf.WriteString(strings.Repeat(string(ch), size))
	if label != "" {
		r.buf.WriteByte(' ')
		r.buf.WriteString(label)
	}
	r.buf.WriteByte('\n')
}

// section writes one conflict side, newline terminated even when the
// content is empty or lacks a trailing newline.
func (r *renderer) section(content []byte) {
	r.mass += len(content)
	r.buf.Write(content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		r.buf.WriteByte('\n')
	}
}

// newlineBoundary starts the opening marker on a fresh line.
func (r *renderer) newlineBoundary() {
	b := r.buf.Bytes()
	if len(b) > 0 && b[len(b)-1] != '\n' {
		r.buf.WriteByte('\n')
	}
}
