package cvs

import "errors"

var (
	// ErrNotFound indicates the CV id is unknown to the caller's workspace.
	ErrNotFound = errors.New("not found")
)
