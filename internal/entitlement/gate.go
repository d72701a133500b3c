// Package entitlement decides whether a requester may run an operation and
// meters free-tier usage.
package entitlement

import (
	"context"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/models"
)

// Unlimited is the QuotaRemaining reported for premium requesters.
const Unlimited = -1

const (
	ReasonPremiumOnly  = "premium_only"
	ReasonQuotaReached = "quota_reached"
)

type Entitlement struct {
	Tier           models.Tier
	QuotaRemaining int
}

// UsageStore counts free-tier operations per requester. Increment and
// Decrement must be atomic so concurrent reservations cannot overshoot.
type UsageStore interface {
	Usage(ctx context.Context, userID string) (int, error)
	Increment(ctx context.Context, userID string) (int, error)
	Decrement(ctx context.Context, userID string) (int, error)
}

type Gate struct {
	store       UsageStore
	freeLimit   int
	premiumOnly map[models.OperationType]bool
}

func NewGate(store UsageStore, freeLimit int, premiumOnly []models.OperationType) *Gate {
	po := make(map[models.OperationType]bool, len(premiumOnly))
	for _, op := range premiumOnly {
		po[op] = true
	}
	return &Gate{store: store, freeLimit: freeLimit, premiumOnly: po}
}

// DeniedError carries the reason an entitlement check failed.
type DeniedError struct {
	Err    *apperr.Error
	Reason string
}

func (e *DeniedError) Error() string { return e.Err.Error() }
func (e *DeniedError) Unwrap() error { return e.Err }

func denied(reason, message string) error {
	return &DeniedError{Err: apperr.EntitlementDenied(message), Reason: reason}
}

func (g *Gate) Resolve(ctx context.Context, userID string, tier models.Tier, op models.OperationType) (Entitlement, error) {
	if tier == models.TierPremium {
		return Entitlement{Tier: tier, QuotaRemaining: Unlimited}, nil
	}

	if g.premiumOnly[op] {
		return Entitlement{Tier: models.TierFree}, denied(ReasonPremiumOnly,
			"This feature is only available for premium subscriptions")
	}

	used, err := g.store.Usage(ctx, userID)
	if err != nil {
		return Entitlement{}, apperr.Wrap(apperr.KindInternal, "failed to read usage", err)
	}

	remaining := g.freeLimit - used
	if remaining <= 0 {
		return Entitlement{Tier: models.TierFree}, denied(ReasonQuotaReached,
			"Limit reached. Upgrade to continue.")
	}
	return Entitlement{Tier: models.TierFree, QuotaRemaining: remaining}, nil
}

// Reserve takes one free-tier slot before the operation runs. The slot is
// taken with an atomic increment and handed back when it overshoots the
// limit, so concurrent requests at the edge of the quota cannot all pass.
// Premium requesters are not metered.
func (g *Gate) Reserve(ctx context.Context, userID string, tier models.Tier) error {
	if tier == models.TierPremium {
		return nil
	}
	n, err := g.store.Increment(ctx, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to record usage", err)
	}
	if n > g.freeLimit {
		if _, err := g.store.Decrement(ctx, userID); err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to release usage", err)
		}
		return denied(ReasonQuotaReached, "Limit reached. Upgrade to continue.")
	}
	return nil
}

// Release returns a slot taken by Reserve for an operation that failed.
func (g *Gate) Release(ctx context.Context, userID string, tier models.Tier) error {
	if tier == models.TierPremium {
		return nil
	}
	if _, err := g.store.Decrement(ctx, userID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to release usage", err)
	}
	return nil
}
