package account

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cv-builder/internal/cv"
	"cv-builder/internal/cvs"
	"cv-builder/internal/shared/storage/kv"
	"cv-builder/internal/shared/storage/kv/memory"
	"cv-builder/internal/shared/util"
	"cv-builder/internal/tier"
)

// namespaceStore fails or drops writes under one user's namespace.
type namespaceStore struct {
	kv.Store
	prefix string
	drop   bool
}

func (s *namespaceStore) Write(ctx context.Context, key string, value []byte) error {
	if s.prefix != "" && strings.HasPrefix(key, s.prefix+"/") {
		if s.drop {
			return nil
		}
		return errors.New("bucket unavailable")
	}
	return s.Store.Write(ctx, key, value)
}

func TestClaimGuestKeepsGuestDataWhenUserWritesFail(t *testing.T) {
	ctx := context.Background()
	store := &namespaceStore{Store: memory.New()}
	cvSvc := cvs.NewService(store, nil)
	svc := NewService(cvSvc)

	guestUserID := "guest:44444444-4444-4444-4444-444444444444"
	saved, err := cvSvc.Save(ctx, guestUserID, "Guest CV")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	store.prefix = util.HashUserKey("user-1")

	if _, err := svc.ClaimGuest(ctx, guestUserID, "user-1"); !errors.Is(err, cv.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if _, ok := cvSvc.Workspace(guestUserID).Manager.Get(ctx, saved.ID); !ok {
		t.Fatalf("guest cv must survive a failed claim")
	}

	store.prefix = ""
	result, err := svc.ClaimGuest(ctx, guestUserID, "user-1")
	if err != nil {
		t.Fatalf("retry claim: %v", err)
	}
	if result.MigratedSavedCVs != 1 {
		t.Fatalf("expected retry to migrate the cv, got %+v", result)
	}
}

func TestClaimGuestVerifiesImportedIDs(t *testing.T) {
	ctx := context.Background()
	store := &namespaceStore{Store: memory.New(), drop: true}
	cvSvc := cvs.NewService(store, nil)
	svc := NewService(cvSvc)

	guestUserID := "guest:55555555-5555-5555-5555-555555555555"
	saved, _ := cvSvc.Save(ctx, guestUserID, "Guest CV")
	store.prefix = util.HashUserKey("user-1")

	if _, err := svc.ClaimGuest(ctx, guestUserID, "user-1"); !errors.Is(err, ErrClaimIncomplete) {
		t.Fatalf("expected ErrClaimIncomplete, got %v", err)
	}
	if _, ok := cvSvc.Workspace(guestUserID).Manager.Get(ctx, saved.ID); !ok {
		t.Fatalf("guest cv must survive an unverified claim")
	}
}

func TestClaimGuestReportsOverLimit(t *testing.T) {
	ctx := context.Background()
	cvSvc := cvs.NewService(memory.New(), tier.NewService(tier.Limits{Free: 2, Pro: 4, Premium: 8}, 0))
	svc := NewService(cvSvc)

	guestUserID := "guest:66666666-6666-6666-6666-666666666666"
	for _, name := range []string{"a", "b"} {
		if _, err := cvSvc.Save(ctx, guestUserID, name); err != nil {
			t.Fatalf("seed guest: %v", err)
		}
	}
	if _, err := cvSvc.Save(ctx, "user-1", "mine"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	result, err := svc.ClaimGuest(ctx, guestUserID, "user-1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !result.OverLimit || result.MigratedSavedCVs != 2 {
		t.Fatalf("expected over-limit claim of 2 cvs, got %+v", result)
	}
	if cvSvc.Count(ctx, "user-1") != 3 {
		t.Fatalf("claim must not drop cvs over the quota")
	}
	if _, err := cvSvc.Save(ctx, "user-1", "more"); !errors.Is(err, tier.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached after over-limit claim, got %v", err)
	}
}
