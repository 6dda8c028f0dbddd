// Package linebased implements a plain three-way line merge, the
// fallback when no grammar covers a file or the structural pass is
// unavailable.
package linebased

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/graft-dev/graft/render"
)

// block is one changed region of the base: lines [lo,hi) replaced by
// rep. lo==hi is a pure insertion before line lo.
type block struct {
	lo, hi int
	rep    []string
}

// Merge performs a diff3-style line merge. Non-overlapping changes
// from both sides are combined; overlapping ones become marker
// conflicts formatted per opts.
func Merge(base, left, right []byte, opts render.Options) ([]byte, render.Stats, error) {
	bl := splitLines(string(base))
	lb := blocks(bl, splitLines(string(left)))
	rb := blocks(bl, splitLines(string(right)))

	var out strings.Builder
	var stats render.Stats
	size := opts.MarkerSize
	if size <= 0 {
		size = 7
	}

	emit := func(lines []string) {
		for _, l := range lines {
			out.WriteString(l)
		}
	}
	cursor := 0
	li, ri := 0, 0
	for li < len(lb) || ri < len(rb) {
		var lo, hi int
		switch {
		case ri >= len(rb) || (li < len(lb) && lb[li].lo <= rb[ri].lo):
			lo, hi = lb[li].lo, lb[li].hi
		default:
			lo, hi = rb[ri].lo, rb[ri].hi
		}
		// Grow the region while blocks from either side touch it.
		inL, inR := []block(nil), []block(nil)
		for {
			grown := false
			for li < len(lb) && overlaps(lb[li], lo, hi) {
				hi = max(hi, lb[li].hi)
				inL = append(inL, lb[li])
				li++
				grown = true
			}
			for ri < len(rb) && overlaps(rb[ri], lo, hi) {
				hi = max(hi, rb[ri].hi)
				inR = append(inR, rb[ri])
				ri++
				grown = true
			}
			if !grown {
				break
			}
		}

		emit(bl[cursor:lo])
		cursor = hi

		ls := apply(bl, lo, hi, inL)
		rs := apply(bl, lo, hi, inR)
		switch {
		case len(inL) == 0 || equalLines(ls, rs):
			emit(rs)
		case len(inR) == 0:
			emit(ls)
		default:
			stats.Conflicts++
			writeMarker(&out, '<', size, opts.LeftName)
			stats.Mass += emitSection(&out, ls)
			if !opts.Compact {
				writeMarker(&out, '|', size, opts.BaseName)
				stats.Mass += emitSection(&out, bl[lo:hi])
			}
			writeMarker(&out, '=', size, "")
			stats.Mass += emitSection(&out, rs)
			writeMarker(&out, '>', size, opts.RightName)
		}
	}
	emit(bl[cursor:])
	return []byte(out.String()), stats, nil
}

// blocks aligns derived lines against the base and returns the changed
// regions in base order.
func blocks(base, derived []string) []block {
	dmp := diffmatchpatch.New()
	c1, c2, lines := linesToChars(base, derived)
	diffs := dmp.DiffMainRunes(c1, c2, false)

	var out []block
	cur := 0
	pend := false
	var b block
	flush := func() {
		if pend {
			out = append(out, b)
			pend = false
		}
	}
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			cur += n
		case diffmatchpatch.DiffDelete:
			if !pend {
				b = block{lo: cur, hi: cur}
				pend = true
			}
			b.hi = cur + n
			cur += n
		case diffmatchpatch.DiffInsert:
			if !pend {
				b = block{lo: cur, hi: cur}
				pend = true
			}
			for _, r := range d.Text {
				b.rep = append(b.rep, lines[r])
			}
		}
	}
	flush()
	return out
}

// linesToChars maps each distinct line to a rune so the diff runs at
// line granularity.
func linesToChars(a, b []string) ([]rune, []rune, map[rune]string) {
	index := map[string]rune{}
	lines := map[rune]string{}
	next := rune(1)
	enc := func(ls []string) []rune {
		out := make([]rune, len(ls))
		for i, l := range ls {
			r, ok := index[l]
			if !ok {
				r = next
				next++
				index[l] = r
				lines[r] = l
			}
			out[i] = r
		}
		return out
	}
	return enc(a), enc(b), lines
}

// apply replays one side's blocks over base[lo:hi].
func apply(base []string, lo, hi int, bs []block) []string {
	var out []string
	cur := lo
	for _, b := range bs {
		out = append(out, base[cur:b.lo]...)
		out = append(out, b.rep...)
		cur = b.hi
	}
	out = append(out, base[cur:hi]...)
	return out
}

func overlaps(b block, lo, hi int) bool {
	if b.lo == b.hi {
		return b.lo >= lo && b.lo <= hi
	}
	return b.lo < hi && lo < b.hi
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeMarker(out *strings.Builder, ch byte, size int, label string) {
	out.WriteString(strings.Repeat(string(ch), size))
	if label != "" {
		out.WriteByte(' ')
		out.WriteString(label)
	}
	out.WriteByte('\n')
}

func emitSection(out *strings.Builder, lines []string) int {
	n := 0
	for _, l := range lines {
		out.WriteString(l)
		n += len(l)
	}
	if n > 0 && !strings.HasSuffix(lines[len(lines)-1], "\n") {
		out.WriteByte('\n')
	}
	return n
}

// splitLines keeps line terminators attached.
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
