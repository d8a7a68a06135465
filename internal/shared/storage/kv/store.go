package kv

import (
	"context"
	"errors"
	"strings"

	"cv-builder/internal/shared/util"
)

// ErrNotFound is returned by Read when no value is stored under the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a byte-oriented key-value slot store. Each key holds one opaque value
// that is always read and written as a whole.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Prefixed scopes every key of the wrapped store under a namespace.
type Prefixed struct {
	Inner  Store
	Prefix string
}

// ForUser returns a store whose keys live under a hashed, filesystem-safe user namespace.
func ForUser(inner Store, userID string) *Prefixed {
	return &Prefixed{Inner: inner, Prefix: util.HashUserKey(userID)}
}

func (p *Prefixed) key(k string) string {
	prefix := strings.Trim(p.Prefix, "/")
	if prefix == "" {
		return k
	}
	return prefix + "/" + strings.TrimLeft(k, "/")
}

// Read reads the namespaced key.
func (p *Prefixed) Read(ctx context.Context, key string) ([]byte, error) {
	return p.Inner.Read(ctx, p.key(key))
}

// Write writes the namespaced key.
func (p *Prefixed) Write(ctx context.Context, key string, value []byte) error {
	return p.Inner.Write(ctx, p.key(key), value)
}

// Delete removes the namespaced key.
func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.Inner.Delete(ctx, p.key(key))
}

var _ Store = (*Prefixed)(nil)
