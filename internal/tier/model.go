package tier

import (
	"strings"
	"time"
)

// Tier is a subscription level bounding the saved CV quota.
type Tier string

const (
	Free    Tier = "free"
	Pro     Tier = "pro"
	Premium Tier = "premium"
)

// Subscription status values.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Subscription is the payment module's record of a user's plan.
type Subscription struct {
	UserID    string    `json:"userId"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Limits are the maximum saved CVs per tier.
type Limits struct {
	Free    int
	Pro     int
	Premium int
}

// DefaultLimits mirrors the published plans.
func DefaultLimits() Limits {
	return Limits{Free: 3, Pro: 10, Premium: 999}
}

// For returns the limit of t.
func (l Limits) For(t Tier) int {
	switch t {
	case Premium:
		return l.Premium
	case Pro:
		return l.Pro
	default:
		return l.Free
	}
}

// tierOf maps a subscription to a tier at time now. Inactive or expired
// subscriptions are free; any active plan other than premium counts as pro.
func tierOf(sub Subscription, now time.Time) Tier {
	if sub.Status != StatusActive {
		return Free
	}
	if !sub.ExpiresAt.IsZero() && !now.Before(sub.ExpiresAt) {
		return Free
	}
	if strings.EqualFold(strings.TrimSpace(sub.Plan), string(Premium)) {
		return Premium
	}
	return Pro
}
