package tree

import "errors"

var (
	ErrBadSpan  = errors.New("bad span")
	ErrBadChild = errors.New("bad child")
	ErrNoRoot   = errors.New("no root")
)
