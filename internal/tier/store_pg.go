package tier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed subscription store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context, userID string) (Subscription, error) {
	var (
		sub       Subscription
		expiresAt sql.NullTime
	)
	row := s.DB.QueryRowContext(ctx, `
SELECT user_id, plan, status, expires_at FROM subscriptions WHERE user_id = $1`, userID)
	if err := row.Scan(&sub.UserID, &sub.Plan, &sub.Status, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	if expiresAt.Valid {
		sub.ExpiresAt = expiresAt.Time.UTC()
	}
	return sub, nil
}

func (s *pgStore) Upsert(ctx context.Context, sub Subscription) error {
	var expiresAt sql.NullTime
	if !sub.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: sub.ExpiresAt, Valid: true}
	}
	if _, err := s.DB.ExecContext(ctx, `
INSERT INTO subscriptions (user_id, plan, status, expires_at, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (user_id) DO UPDATE SET plan = EXCLUDED.plan, status = EXCLUDED.status,
    expires_at = EXCLUDED.expires_at, updated_at = now()`,
		sub.UserID, sub.Plan, sub.Status, expiresAt); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}
