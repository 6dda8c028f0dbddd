package lang

import "errors"

var (
	ErrNoParser  = errors.New("no parser")
	ErrUnknown   = errors.New("unknown language")
	ErrBadConfig = errors.New("bad language config")
)
