package memory

import (
	"context"
	"errors"
	"testing"

	"cv-builder/internal/shared/storage/kv"
)

func TestValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()
	in := []byte("abc")
	if err := s.Write(ctx, "k", in); err != nil {
		t.Fatalf("write: %v", err)
	}
	in[0] = 'x'
	out, _ := s.Read(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", out)
	}
	out[0] = 'y'
	again, _ := s.Read(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned value aliased stored slice: %q", again)
	}
}

func TestDeleteAndKeys(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Write(ctx, "a/one", []byte("1"))
	_ = s.Write(ctx, "a/two", []byte("2"))
	_ = s.Write(ctx, "b/one", []byte("3"))

	if keys := s.Keys("a/"); len(keys) != 2 || keys[0] != "a/one" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := s.Delete(ctx, "a/one"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Read(ctx, "a/one"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Read(ctx, "k"); err == nil {
		t.Fatalf("expected context error")
	}
}
