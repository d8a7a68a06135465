package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cv-builder/internal/shared/storage/kv"
)

func TestWriteReadDelete(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	if _, err := store.Read(ctx, "abc/saved_cvs"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Write(ctx, "abc/saved_cvs", []byte(`[1]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "abc", "saved_cvs.json")); err != nil {
		t.Fatalf("expected backing file: %v", err)
	}

	if err := store.Write(ctx, "abc/saved_cvs", []byte(`[1,2]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Read(ctx, "abc/saved_cvs")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Fatalf("read = %q, want [1,2]", got)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "abc"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be renamed away, found %d entries", len(entries))
	}

	if err := store.Delete(ctx, "abc/saved_cvs"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "abc/saved_cvs"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../escape", "/etc/passwd", "."} {
		if err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
