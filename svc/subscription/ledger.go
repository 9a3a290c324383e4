package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nutrisnap/nutrisnap/pkg/clock"
	"github.com/nutrisnap/nutrisnap/pkg/logger"
)

// Ledger is the single source of truth for per-user subscription
// records. Every read runs the lazy-validation invariants and persists
// whatever corrections they produce, so callers never see stale tiers
// or yesterday's counters.
type Ledger struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithNowFunc overrides the time source. Used by tests to pin the clock.
func WithNowFunc(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLedger returns a Ledger backed by the given store. Panics on a nil
// store to fail fast on wiring mistakes.
func NewLedger(store Store, opts ...Option) *Ledger {
	if store == nil {
		panic("subscription: store cannot be nil")
	}
	l := &Ledger{
		store: store,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetRecord returns the user's validated subscription record, creating
// the default Lite record on first touch. Lazy validation (expiry
// downgrade, daily and monthly counter resets) runs unconditionally and
// any corrections are persisted before the record is returned.
func (l *Ledger) GetRecord(ctx context.Context, userID int64) (Record, error) {
	now := l.now()

	rec, err := l.store.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		// First touch. Ensure is a merge-create, so two concurrent
		// first touches still produce a single document.
		rec = NewRecord(userID, now)
		if err := l.store.Ensure(ctx, rec); err != nil {
			return Record{}, err
		}
		l.log.InfoContext(ctx, "initialized lite subscription", logger.UserID(userID))
		return rec, nil
	case err != nil:
		return Record{}, err
	}

	repaired, updates := ValidateAndRepair(rec, now)
	if len(updates) > 0 {
		if err := l.store.Set(ctx, userID, updates); err != nil {
			return Record{}, err
		}
		if repaired.Tier != rec.Tier {
			l.log.InfoContext(ctx, "subscription expired, downgraded to lite",
				logger.UserID(userID), logger.Tier(string(rec.Tier)))
		}
	}
	return repaired, nil
}

// ActivateTrial starts the 7-day Pro trial. The trial is strictly
// single-use: once TrialUsed is set it never clears, and repeat calls
// return ErrTrialAlreadyUsed without mutating anything.
func (l *Ledger) ActivateTrial(ctx context.Context, userID int64) error {
	rec, err := l.GetRecord(ctx, userID)
	if err != nil {
		return err
	}
	if rec.TrialUsed {
		return ErrTrialAlreadyUsed
	}

	now := l.now().UTC()
	expiry := now.Add(clock.TrialPeriod())
	err = l.store.Set(ctx, userID, map[string]any{
		"subscription_tier":   TierTrial,
		"subscription_status": StatusActive,
		"subscription_expiry": expiry,
		"trial_used":          true,
	})
	if err != nil {
		return err
	}
	l.log.InfoContext(ctx, "trial activated", logger.UserID(userID))
	return nil
}

// ActivatePro upgrades the user to Pro for the given number of fixed
// 30-day months, counted from now. It applies from any tier (mid-trial
// upgrades and repeat purchases included) and never touches usage
// counters.
func (l *Ledger) ActivatePro(ctx context.Context, userID int64, durationMonths int) error {
	if durationMonths < 1 {
		return ErrInvalidDuration
	}
	// Create-if-absent applies first so a payment for an unseen user
	// still lands on a full document.
	if _, err := l.GetRecord(ctx, userID); err != nil {
		return err
	}

	now := l.now().UTC()
	expiry := now.Add(clock.BillingPeriod(durationMonths))
	err := l.store.Set(ctx, userID, map[string]any{
		"subscription_tier":   TierPro,
		"subscription_status": StatusActive,
		"subscription_expiry": expiry,
	})
	if err != nil {
		return err
	}
	l.log.InfoContext(ctx, "pro subscription activated",
		logger.UserID(userID), slog.Int("duration_months", durationMonths))
	return nil
}

// AddBonusUnits grants ad-hoc purchased analyses on top of the tier
// quota. The grant is a single atomic increment and is independent of
// tier and expiry.
func (l *Ledger) AddBonusUnits(ctx context.Context, userID int64, count int64) error {
	if count < 1 {
		return ErrInvalidBonusCount
	}
	if _, err := l.GetRecord(ctx, userID); err != nil {
		return err
	}
	if err := l.store.Increment(ctx, userID, map[string]int64{"bonus_units": count}); err != nil {
		return err
	}
	l.log.InfoContext(ctx, "bonus units added",
		logger.UserID(userID), slog.Int64("count", count))
	return nil
}

// UnlockMultiSubject grants temporary multi-subject analysis until the
// given instant, independent of tier. Used by one-off purchases.
func (l *Ledger) UnlockMultiSubject(ctx context.Context, userID int64, until time.Time) error {
	if _, err := l.GetRecord(ctx, userID); err != nil {
		return err
	}
	return l.store.Set(ctx, userID, map[string]any{
		"multi_subject_until": until.UTC(),
	})
}

// RecordConsumption atomically charges one completed analysis to the
// user's counters. Daily and monthly counts move in one store operation;
// when the daily limit was already reached the overage burns one bonus
// unit in the same atomic write. Callers invoke this only after the
// gated action actually succeeded.
func (l *Ledger) RecordConsumption(ctx context.Context, userID int64, burnBonus bool) error {
	deltas := map[string]int64{
		"daily_photo_count":   1,
		"monthly_photo_count": 1,
	}
	if burnBonus {
		deltas["bonus_units"] = -1
	}
	return l.store.Increment(ctx, userID, deltas)
}
