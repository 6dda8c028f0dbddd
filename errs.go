package graft

import "errors"

var (
	// ErrParse marks a revision the language profile could not parse.
	ErrParse = errors.New("parse error")
	// ErrRoundTrip marks a grammar or renderer defect: rendering an
	// unmodified parse did not reproduce the input bytes, or a clean
	// merge's output no longer parses.
	ErrRoundTrip = errors.New("render does not round-trip")
	// ErrUnavailable means no merge method applies to the input.
	ErrUnavailable = errors.New("merge unavailable")
)
