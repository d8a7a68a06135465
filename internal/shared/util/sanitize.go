package util

import (
	"errors"
	"strings"
)

// ErrInvalidSegment is returned for key segments that could escape their directory.
var ErrInvalidSegment = errors.New("invalid key segment")

// SanitizeSegment validates one path segment of a storage key.
func SanitizeSegment(seg string) (string, error) {
	s := strings.TrimSpace(seg)
	if s == "" || s == "." || strings.Contains(s, "..") || strings.ContainsAny(s, `/\`) {
		return "", ErrInvalidSegment
	}
	return s, nil
}
