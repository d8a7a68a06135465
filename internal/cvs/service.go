package cvs

import (
	"context"
	"sync"

	"cv-builder/internal/cv"
	"cv-builder/internal/shared/metrics"
	"cv-builder/internal/shared/storage/kv"
	"cv-builder/internal/tier"
	"cv-builder/internal/workingdoc"
)

// Workspace is the CV state of one user.
type Workspace struct {
	Manager *cv.Manager
	Working *workingdoc.Store

	// quota serializes the count check with the insert it guards.
	quota *sync.Mutex
}

// Service hands out per-user workspaces and applies tier quotas to inserts.
// It keeps no per-user state beyond a fixed set of striped locks.
type Service struct {
	Store kv.Store
	Tier  *tier.Service
	opts  []cv.Option
	locks *stripedLocks
}

// NewService constructs a Service over a shared store. Manager options apply to every workspace.
func NewService(store kv.Store, tierSvc *tier.Service, opts ...cv.Option) *Service {
	return &Service{
		Store: store,
		Tier:  tierSvc,
		opts:  opts,
		locks: &stripedLocks{},
	}
}

// Workspace builds a workspace for userID. Workspaces are cheap and not cached;
// every one built for the same user shares that user's locks, so operations stay
// atomic across requests.
func (s *Service) Workspace(userID string) *Workspace {
	i := stripe(userID)
	scoped := kv.ForUser(s.Store, userID)
	working := workingdoc.NewLockedStore(scoped, &s.locks.working[i])
	opts := append(append([]cv.Option{}, s.opts...), cv.WithLocker(&s.locks.manager[i]))
	return &Workspace{
		Manager: cv.NewManager(scoped, working, opts...),
		Working: working,
		quota:   &s.locks.quota[i],
	}
}

// WorkingDoc returns the working document store of userID.
func (s *Service) WorkingDoc(userID string) *workingdoc.Store {
	return s.Workspace(userID).Working
}

// Count returns how many saved CVs userID holds.
func (s *Service) Count(ctx context.Context, userID string) int {
	return s.Workspace(userID).Manager.Count(ctx)
}

// Save snapshots the working document unless the user is at their tier limit.
func (s *Service) Save(ctx context.Context, userID, name string) (cv.SavedCV, error) {
	ws := s.Workspace(userID)
	ws.quota.Lock()
	defer ws.quota.Unlock()

	if err := s.checkQuota(ctx, userID, ws); err != nil {
		return cv.SavedCV{}, err
	}
	return ws.Manager.Save(ctx, name), nil
}

// Duplicate copies a saved CV, subject to the same quota as Save.
func (s *Service) Duplicate(ctx context.Context, userID, id string) (cv.SavedCV, error) {
	ws := s.Workspace(userID)
	ws.quota.Lock()
	defer ws.quota.Unlock()

	if _, ok := ws.Manager.Get(ctx, id); !ok {
		return cv.SavedCV{}, ErrNotFound
	}
	if err := s.checkQuota(ctx, userID, ws); err != nil {
		return cv.SavedCV{}, err
	}
	dup, ok := ws.Manager.Duplicate(ctx, id)
	if !ok {
		return cv.SavedCV{}, ErrNotFound
	}
	return dup, nil
}

// Restore moves a CV back from the recycle bin. Restoring is not quota checked.
func (s *Service) Restore(ctx context.Context, userID, id string) (cv.SavedCV, error) {
	ws := s.Workspace(userID)
	restored, ok := ws.Manager.Restore(ctx, id)
	if !ok {
		return cv.SavedCV{}, ErrNotFound
	}
	return restored, nil
}

// ClearAll drops the user's saved CVs, recycle bin and working document.
func (s *Service) ClearAll(ctx context.Context, userID string) error {
	ws := s.Workspace(userID)
	ws.Manager.Clear(ctx)
	return ws.Working.Clear(ctx)
}

func (s *Service) checkQuota(ctx context.Context, userID string, ws *Workspace) error {
	if s.Tier == nil {
		return nil
	}
	if ok, _ := s.Tier.CanSave(ctx, userID, ws.Manager.Count(ctx)); !ok {
		metrics.IncQuotaRejection()
		return tier.ErrLimitReached
	}
	return nil
}
