package kv_test

import (
	"context"
	"errors"
	"testing"

	"cv-builder/internal/shared/storage/kv"
	"cv-builder/internal/shared/storage/kv/memory"
	"cv-builder/internal/shared/util"
)

func TestForUserNamespacesKeys(t *testing.T) {
	inner := memory.New()
	ctx := context.Background()

	alice := kv.ForUser(inner, "alice")
	bob := kv.ForUser(inner, "bob")

	if err := alice.Write(ctx, "saved_cvs", []byte("a")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := bob.Read(ctx, "saved_cvs"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("bob should not see alice's key, got %v", err)
	}

	want := util.HashUserKey("alice") + "/saved_cvs"
	keys := inner.Keys("")
	if len(keys) != 1 || keys[0] != want {
		t.Fatalf("keys = %v, want [%s]", keys, want)
	}

	if err := alice.Delete(ctx, "saved_cvs"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(inner.Keys("")) != 0 {
		t.Fatalf("expected key removed")
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	value := []byte("abc")
	if err := store.Write(ctx, "k", value); err != nil {
		t.Fatalf("write: %v", err)
	}
	value[0] = 'z'

	got, err := store.Read(ctx, "k")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("stored value changed through caller slice: %q", got)
	}
	got[1] = 'z'
	again, _ := store.Read(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value changed through returned slice: %q", again)
	}
}
