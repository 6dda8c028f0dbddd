// Package graft performs syntax-aware three-way merges of source
// files, falling back to a plain line merge when no grammar applies.
package graft

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/graft-dev/graft/debug"
	"github.com/graft-dev/graft/editscript"
	"github.com/graft-dev/graft/lang"
	"github.com/graft-dev/graft/lang/conf"
	"github.com/graft-dev/graft/lang/json"
	"github.com/graft-dev/graft/linebased"
	"github.com/graft-dev/graft/matcher"
	"github.com/graft-dev/graft/merge"
	"github.com/graft-dev/graft/parsedmerge"
	"github.com/graft-dev/graft/render"
	"github.com/graft-dev/graft/tree"
)

// Method names the merge technique that produced an outcome.
type Method int

const (
	Structural Method = iota
	LineBased
)

func (m Method) String() string {
	switch m {
	case Structural:
		return "structural"
	case LineBased:
		return "line-based"
	}
	return "unknown"
}

// Outcome is a finished merge: the output contents plus how contested
// they are. Mass is the byte count inside conflict regions; between
// outcomes with equal conflict counts, less mass means less manual
// work left.
type Outcome struct {
	Contents  []byte
	Conflicts int
	Mass      int
	Method    Method
}

func (o *Outcome) Clean() bool { return o.Conflicts == 0 }

// Options selects the language and marker formatting for Merge.
type Options struct {
	// Registry resolves Filename to a profile; nil disables structural
	// merging unless Profile is set.
	Registry *lang.Registry
	// Profile overrides filename-based language detection.
	Profile *lang.Profile
	// Filename is the path of the file being merged, used only for
	// language detection.
	Filename string

	Render render.Options
}

// DefaultRegistry returns the built-in language profiles.
func DefaultRegistry() *lang.Registry {
	return lang.NewRegistry(json.Profile(), conf.Profile())
}

// Merge runs the full cascade: structural merge when a grammar covers
// the file, line-based merge otherwise or when the structural pass
// reports an error. It fails only when no method applies at all.
func Merge(base, left, right []byte, opts Options) (*Outcome, error) {
	prof := opts.Profile
	if prof == nil && opts.Registry != nil {
		if p, err := opts.Registry.ByFilename(opts.Filename); err == nil {
			prof = p
		}
	}
	if prof != nil {
		out, err := StructuralMerge(base, left, right, prof, opts.Render)
		if err == nil {
			return out, nil
		}
		if debug.Merge() {
			debug.Logf("structural merge of %s failed, falling back: %v\n", opts.Filename, err)
		}
	}
	if out, ok := trivial(base, left, right, LineBased); ok {
		return out, nil
	}
	contents, stats, err := linebased.Merge(base, left, right, opts.Render)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &Outcome{
		Contents:  contents,
		Conflicts: stats.Conflicts,
		Mass:      stats.Mass,
		Method:    LineBased,
	}, nil
}

// StructuralMerge parses the three revisions, aligns each side with
// the base, and merges the two edit scripts. A side without structural
// changes yields the other side's bytes untouched.
func StructuralMerge(base, left, right []byte, prof *lang.Profile, ropts render.Options) (*Outcome, error) {
	if out, ok := trivial(base, left, right, Structural); ok {
		return out, nil
	}

	texts := [3][]byte{base, left, right}
	var (
		wg    sync.WaitGroup
		trees [3]*tree.Tree
		errs  [3]error
	)
	for i := range texts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trees[i], errs[i] = prof.Parse(texts[i])
			if errs[i] == nil {
				errs[i] = roundTrip(prof, trees[i])
			}
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, ErrRoundTrip) {
			return nil, fmt.Errorf("%s revision: %w", merge.Revision(i), err)
		}
		return nil, fmt.Errorf("%w: %s revision: %w", ErrParse, merge.Revision(i), err)
	}

	mt := matcher.New(prof)
	var (
		lm, rm     *matcher.Matching
		lerr, rerr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		lm, lerr = mt.Match(trees[0], trees[1])
	}()
	go func() {
		defer wg.Done()
		rm, rerr = mt.Match(trees[0], trees[2])
	}()
	wg.Wait()
	if lerr != nil {
		return nil, lerr
	}
	if rerr != nil {
		return nil, rerr
	}

	ls := editscript.Diff(lm, prof)
	rs := editscript.Diff(rm, prof)
	if ls.Empty() {
		return &Outcome{Contents: clone(right), Method: Structural}, nil
	}
	if rs.Empty() {
		return &Outcome{Contents: clone(left), Method: Structural}, nil
	}

	res, err := merge.Merge(&merge.Input{
		Profile:     prof,
		Base:        trees[0],
		Left:        trees[1],
		Right:       trees[2],
		LeftMatch:   lm,
		RightMatch:  rm,
		LeftScript:  ls,
		RightScript: rs,
	})
	if err != nil {
		return nil, err
	}
	contents, stats, err := render.Render(res, ropts)
	if err != nil {
		return nil, err
	}
	if res.Clean() {
		if _, err := prof.Parse(contents); err != nil {
			return nil, fmt.Errorf("%w: merged output: %w", ErrRoundTrip, err)
		}
	}
	return &Outcome{
		Contents:  contents,
		Conflicts: stats.Conflicts,
		Mass:      stats.Mass,
		Method:    Structural,
	}, nil
}

// Solve reconstructs the three revisions from an already conflicted
// file and retries the merge structurally.
func Solve(marked []byte, prof *lang.Profile, ropts render.Options) (*Outcome, error) {
	f, err := parsedmerge.Parse(marked)
	if err != nil {
		return nil, err
	}
	if !f.HasBaseSections() {
		return nil, fmt.Errorf("%w: conflicts carry no base sections", ErrUnavailable)
	}
	base, left, right := f.Revisions()
	if ropts.LeftName == "" {
		ropts.LeftName = f.LeftName
	}
	if ropts.BaseName == "" {
		ropts.BaseName = f.BaseName
	}
	if ropts.RightName == "" {
		ropts.RightName = f.RightName
	}
	if ropts.MarkerSize == 0 {
		ropts.MarkerSize = f.MarkerSize
	}
	out, err := StructuralMerge(base, left, right, prof, ropts)
	if err != nil {
		return nil, err
	}
	if out.Conflicts >= f.CountConflicts() && out.Mass >= f.Mass() {
		// No improvement; keep the user's file as is.
		return &Outcome{
			Contents:  clone(marked),
			Conflicts: f.CountConflicts(),
			Mass:      f.Mass(),
			Method:    Structural,
		}, nil
	}
	return out, nil
}

// roundTrip verifies the grammar's spans: rendering an unmodified parse
// through the real frame and gap plumbing must reproduce the revision's
// bytes exactly. A grammar that fails here cannot be trusted to splice.
func roundTrip(prof *lang.Profile, t *tree.Tree) error {
	rootID := t.Root()
	root := &merge.MergedNode{Rev: merge.Base, Src: rootID, Kind: t.Kind(rootID)}
	for _, c := range t.Children(rootID) {
		root.Children = append(root.Children,
			&merge.MergedNode{Rev: merge.Base, Src: c, Exact: true, Kind: t.Kind(c)})
	}
	if len(root.Children) == 0 {
		root.Exact = true
	}
	res := &merge.Result{
		Profile:   prof,
		BaseTree:  t,
		LeftTree:  t,
		RightTree: t,
		Root:      root,
	}
	out, _, err := render.Render(res, render.Options{})
	if err != nil {
		return err
	}
	if !bytes.Equal(out, t.Text) {
		return fmt.Errorf("%w: grammar %s", ErrRoundTrip, prof.Name)
	}
	return nil
}

// trivial handles the byte-equality fast paths without parsing.
func trivial(base, left, right []byte, m Method) (*Outcome, bool) {
	switch {
	case bytes.Equal(left, right):
		return &Outcome{Contents: clone(left), Method: m}, true
	case bytes.Equal(base, left):
		return &Outcome{Contents: clone(right), Method: m}, true
	case bytes.Equal(base, right):
		return &Outcome{Contents: clone(left), Method: m}, true
	}
	return nil, false
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }
