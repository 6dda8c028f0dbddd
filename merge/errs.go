package merge

import "errors"

// ErrInternal marks invariant violations inside the merge. They abort
// the merge; the caller falls back to the line-based strategy.
var ErrInternal = errors.New("internal merge error")
