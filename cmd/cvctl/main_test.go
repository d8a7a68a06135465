package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cv-builder/internal/bootstrap"
	"cv-builder/internal/shared/config"
)

const testUser = "user-42"

func useApp(t *testing.T) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.Build(config.Config{
		Env:              "dev",
		KVStore:          "memory",
		FreeSavedCVs:     3,
		ProSavedCVs:      10,
		PremiumSavedCVs:  999,
		TrashRetention:   30 * 24 * time.Hour,
		SubscriptionTerm: 30 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	prev := buildApp
	buildApp = func() (*bootstrap.App, error) { return app, nil }
	t.Cleanup(func() { buildApp = prev })
	return app
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUserFlagRequired(t *testing.T) {
	useApp(t)
	if _, err := run(t, "list"); err == nil || !strings.Contains(err.Error(), "--user") {
		t.Fatalf("expected --user error, got %v", err)
	}
}

func TestListSortsByName(t *testing.T) {
	app := useApp(t)
	ctx := context.Background()
	for _, name := range []string{"beta", "Alpha"} {
		if _, err := app.CVService.Save(ctx, testUser, name); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	out, err := run(t, "list", "--user", testUser, "--sort", "name", "--dir", "asc")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var items []summary
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(items) != 2 || items[0].Name != "Alpha" || items[1].Name != "beta" {
		t.Fatalf("unexpected order %+v", items)
	}
}

func TestTrashRestoreAndEmpty(t *testing.T) {
	app := useApp(t)
	ctx := context.Background()
	m := app.CVService.Workspace(testUser).Manager
	a, _ := app.CVService.Save(ctx, testUser, "A")
	b, _ := app.CVService.Save(ctx, testUser, "B")
	m.Delete(ctx, a.ID)
	m.Delete(ctx, b.ID)

	out, err := run(t, "trash", "--user", testUser)
	if err != nil {
		t.Fatalf("trash: %v", err)
	}
	var items []trashSummary
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].DeletedAt == "" {
		t.Fatalf("unexpected trash %+v", items)
	}

	out, err = run(t, "restore", "--user", testUser, a.ID)
	if err != nil || !strings.Contains(out, "restored "+a.ID) {
		t.Fatalf("restore: %q %v", out, err)
	}
	if _, err := run(t, "restore", "--user", testUser, "missing"); err == nil {
		t.Fatalf("expected error for unknown id")
	}

	out, err = run(t, "empty-trash", "--user", testUser)
	if err != nil || strings.TrimSpace(out) != "emptied 1" {
		t.Fatalf("empty-trash: %q %v", out, err)
	}
	if m.Count(ctx) != 1 || m.TrashCount(ctx) != 0 {
		t.Fatalf("unexpected counts saved=%d trash=%d", m.Count(ctx), m.TrashCount(ctx))
	}
}

func TestPurgeReportsCount(t *testing.T) {
	useApp(t)
	out, err := run(t, "purge", "--user", testUser)
	if err != nil || strings.TrimSpace(out) != "purged 0" {
		t.Fatalf("purge: %q %v", out, err)
	}
}
