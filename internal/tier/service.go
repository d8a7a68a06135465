package tier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cv-builder/internal/shared/telemetry"
)

// DefaultSubscriptionDuration is how long a dev subscription stays active.
const DefaultSubscriptionDuration = 30 * 24 * time.Hour

type store interface {
	Get(ctx context.Context, userID string) (Subscription, error)
	Upsert(ctx context.Context, sub Subscription) error
}

// Service answers quota questions from subscription state.
type Service struct {
	store    store
	limits   Limits
	duration time.Duration
	now      func() time.Time
}

// NewService constructs a Service with in-memory store.
func NewService(limits Limits, duration time.Duration) *Service {
	return newService(newMemoryStore(), limits, duration)
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store, limits Limits, duration time.Duration) *Service {
	return newService(pgStore, limits, duration)
}

func newService(st store, limits Limits, duration time.Duration) *Service {
	if duration <= 0 {
		duration = DefaultSubscriptionDuration
	}
	return &Service{
		store:    st,
		limits:   limits,
		duration: duration,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TierFor resolves the user's tier. Lookup failures degrade to free.
func (s *Service) TierFor(ctx context.Context, userID string) Tier {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Warn("tier.lookup_failed", map[string]any{"user_id": userID, "error": err})
		}
		return Free
	}
	return tierOf(sub, s.now())
}

// MaxSavedCVs returns the saved CV quota of the user.
func (s *Service) MaxSavedCVs(ctx context.Context, userID string) int {
	return s.limits.For(s.TierFor(ctx, userID))
}

// CanSave reports whether a user holding current saved CVs may add another.
func (s *Service) CanSave(ctx context.Context, userID string, current int) (bool, int) {
	limit := s.MaxSavedCVs(ctx, userID)
	return current < limit, limit
}

// Subscribe activates plan for the configured duration.
func (s *Service) Subscribe(ctx context.Context, userID, plan string) (Subscription, error) {
	userID = strings.TrimSpace(userID)
	plan = strings.ToLower(strings.TrimSpace(plan))
	if userID == "" {
		return Subscription{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var sub Subscription
	switch Tier(plan) {
	case Free:
		sub = Subscription{UserID: userID, Plan: plan, Status: StatusCancelled}
	case Pro, Premium:
		sub = Subscription{UserID: userID, Plan: plan, Status: StatusActive, ExpiresAt: s.now().Add(s.duration)}
	default:
		return Subscription{}, fmt.Errorf("%w: unknown plan %q", ErrInvalidInput, plan)
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		return Subscription{}, err
	}
	telemetry.Info("tier.subscribed", map[string]any{"user_id": userID, "plan": plan})
	return sub, nil
}

// Limits returns the configured per-tier limits.
func (s *Service) Limits() Limits {
	return s.limits
}
