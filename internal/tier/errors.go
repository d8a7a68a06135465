package tier

import "errors"

var (
	// ErrLimitReached indicates the user already holds the maximum number of saved CVs.
	ErrLimitReached = errors.New("limit reached")
	// ErrNotFound indicates no subscription exists for the user.
	ErrNotFound = errors.New("subscription not found")
	// ErrInvalidInput indicates an unknown plan or missing user.
	ErrInvalidInput = errors.New("invalid input")
)
