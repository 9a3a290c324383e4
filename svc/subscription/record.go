package subscription

import (
	"time"

	"github.com/nutrisnap/nutrisnap/pkg/clock"
)

// Tier is a user's entitlement level. The set is closed: anything read
// from storage that is not one of these normalizes to TierLite.
type Tier string

const (
	TierLite  Tier = "lite"
	TierTrial Tier = "trial"
	TierPro   Tier = "pro"
)

// Valid reports whether the tier is one of the known values.
func (t Tier) Valid() bool {
	switch t {
	case TierLite, TierTrial, TierPro:
		return true
	}
	return false
}

// Status is the subscription lifecycle status.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Record is the per-user subscription document. It is the single shared
// mutable resource of the entitlement core; every mutation goes through
// the Ledger or the metering increments.
type Record struct {
	UserID            int64      `bson:"_id"`
	Tier              Tier       `bson:"subscription_tier"`
	Status            Status     `bson:"subscription_status"`
	Expiry            *time.Time `bson:"subscription_expiry,omitempty"`
	DailyCount        int64      `bson:"daily_photo_count"`
	MonthlyCount      int64      `bson:"monthly_photo_count"`
	LastResetDate     string     `bson:"last_reset_date"`
	LastMonthlyReset  string     `bson:"last_monthly_reset"`
	TrialUsed         bool       `bson:"trial_used"`
	BonusUnits        int64      `bson:"bonus_units"`
	MultiSubjectUntil *time.Time `bson:"multi_subject_until,omitempty"`
	CreatedAt         time.Time  `bson:"created_at"`
}

// NewRecord returns the default record a user gets on first touch:
// Lite, active, no expiry, zero counters.
func NewRecord(userID int64, now time.Time) Record {
	return Record{
		UserID:           userID,
		Tier:             TierLite,
		Status:           StatusActive,
		DailyCount:       0,
		MonthlyCount:     0,
		LastResetDate:    clock.Today(now),
		LastMonthlyReset: clock.ThisMonth(now),
		TrialUsed:        false,
		BonusUnits:       0,
		CreatedAt:        now.UTC(),
	}
}

// IsActive reports whether the subscription is currently active.
func (r Record) IsActive() bool {
	return r.Status == StatusActive
}

// MultiSubjectUnlocked reports whether a temporary multi-subject unlock
// (a one-off purchase, independent of tier) is still in effect.
func (r Record) MultiSubjectUnlocked(now time.Time) bool {
	return r.MultiSubjectUntil != nil && r.MultiSubjectUntil.After(now.UTC())
}

// ValidateAndRepair applies the lazy-read invariants to a record and
// returns the repaired copy together with the store updates needed to
// persist the corrections. An empty update map means the record was
// already consistent. The function is pure; it never touches storage.
//
// Repairs, in order:
//  1. Unknown tier or status values normalize to Lite/Active.
//  2. An active record whose expiry has passed downgrades to
//     Lite/Active with no expiry. Counters and trialUsed are kept.
//  3. A stale LastResetDate zeroes DailyCount and advances the date to
//     today, at most once per UTC day.
//  4. A stale LastMonthlyReset zeroes MonthlyCount and advances the
//     month marker, at most once per UTC month.
func ValidateAndRepair(rec Record, now time.Time) (Record, map[string]any) {
	updates := make(map[string]any)

	if !rec.Tier.Valid() {
		rec.Tier = TierLite
		updates["subscription_tier"] = rec.Tier
	}
	if !rec.Status.Valid() {
		rec.Status = StatusActive
		updates["subscription_status"] = rec.Status
	}

	if rec.Status == StatusActive && clock.Expired(rec.Expiry, now) {
		rec.Tier = TierLite
		rec.Status = StatusActive
		rec.Expiry = nil
		updates["subscription_tier"] = rec.Tier
		updates["subscription_status"] = rec.Status
		updates["subscription_expiry"] = nil
	}

	if clock.DayRolledOver(rec.LastResetDate, now) {
		rec.DailyCount = 0
		rec.LastResetDate = clock.Today(now)
		updates["daily_photo_count"] = int64(0)
		updates["last_reset_date"] = rec.LastResetDate
	}

	if clock.MonthRolledOver(rec.LastMonthlyReset, now) {
		rec.MonthlyCount = 0
		rec.LastMonthlyReset = clock.ThisMonth(now)
		updates["monthly_photo_count"] = int64(0)
		updates["last_monthly_reset"] = rec.LastMonthlyReset
	}

	return rec, updates
}
