package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nutrisnap/nutrisnap/svc/subscription"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestNewRecord(t *testing.T) {
	t.Parallel()

	rec := subscription.NewRecord(7, now)

	assert.Equal(t, int64(7), rec.UserID)
	assert.Equal(t, subscription.TierLite, rec.Tier)
	assert.Equal(t, subscription.StatusActive, rec.Status)
	assert.Nil(t, rec.Expiry)
	assert.Zero(t, rec.DailyCount)
	assert.Zero(t, rec.MonthlyCount)
	assert.Equal(t, "2025-06-15", rec.LastResetDate)
	assert.Equal(t, "2025-06", rec.LastMonthlyReset)
	assert.False(t, rec.TrialUsed)
}

func TestValidateAndRepair(t *testing.T) {
	t.Parallel()

	t.Run("consistent record is untouched", func(t *testing.T) {
		t.Parallel()

		rec := subscription.NewRecord(1, now)
		rec.DailyCount = 3

		repaired, updates := subscription.ValidateAndRepair(rec, now)

		assert.Empty(t, updates)
		assert.Equal(t, rec, repaired)
	})

	t.Run("daily rollover resets counter once", func(t *testing.T) {
		t.Parallel()

		rec := subscription.NewRecord(1, now)
		rec.DailyCount = 5
		rec.LastResetDate = "2025-06-14"

		repaired, updates := subscription.ValidateAndRepair(rec, now)

		assert.Equal(t, int64(0), repaired.DailyCount)
		assert.Equal(t, "2025-06-15", repaired.LastResetDate)
		assert.Contains(t, updates, "daily_photo_count")
		assert.Contains(t, updates, "last_reset_date")

		// Second pass on the repaired record is a no-op.
		_, again := subscription.ValidateAndRepair(repaired, now)
		assert.Empty(t, again)
	})

	t.Run("expired pro downgrades to lite", func(t *testing.T) {
		t.Parallel()

		expired := now.Add(-time.Hour)
		rec := subscription.NewRecord(1, now)
		rec.Tier = subscription.TierPro
		rec.Expiry = &expired
		rec.DailyCount = 2
		rec.TrialUsed = true

		repaired, updates := subscription.ValidateAndRepair(rec, now)

		assert.Equal(t, subscription.TierLite, repaired.Tier)
		assert.Equal(t, subscription.StatusActive, repaired.Status)
		assert.Nil(t, repaired.Expiry)
		assert.Equal(t, subscription.TierLite, updates["subscription_tier"])
		assert.Contains(t, updates, "subscription_expiry")
		// Downgrade keeps counters and the one-way trial flag.
		assert.Equal(t, int64(2), repaired.DailyCount)
		assert.True(t, repaired.TrialUsed)
	})

	t.Run("future expiry is left alone", func(t *testing.T) {
		t.Parallel()

		future := now.Add(time.Hour)
		rec := subscription.NewRecord(1, now)
		rec.Tier = subscription.TierTrial
		rec.Expiry = &future

		repaired, updates := subscription.ValidateAndRepair(rec, now)

		assert.Empty(t, updates)
		assert.Equal(t, subscription.TierTrial, repaired.Tier)
	})

	t.Run("monthly rollover resets monthly counter", func(t *testing.T) {
		t.Parallel()

		rec := subscription.NewRecord(1, now)
		rec.MonthlyCount = 140
		rec.LastMonthlyReset = "2025-05"

		repaired, updates := subscription.ValidateAndRepair(rec, now)

		assert.Equal(t, int64(0), repaired.MonthlyCount)
		assert.Equal(t, "2025-06", repaired.LastMonthlyReset)
		assert.Contains(t, updates, "monthly_photo_count")
	})

	t.Run("unknown tier and status normalize", func(t *testing.T) {
		t.Parallel()

		rec := subscription.NewRecord(1, now)
		rec.Tier = subscription.Tier("platinum")
		rec.Status = subscription.Status("paused")

		repaired, updates := subscription.ValidateAndRepair(rec, now)

		assert.Equal(t, subscription.TierLite, repaired.Tier)
		assert.Equal(t, subscription.StatusActive, repaired.Status)
		assert.Contains(t, updates, "subscription_tier")
		assert.Contains(t, updates, "subscription_status")
	})
}

func TestRecord_MultiSubjectUnlocked(t *testing.T) {
	t.Parallel()

	rec := subscription.NewRecord(1, now)
	assert.False(t, rec.MultiSubjectUnlocked(now))

	until := now.Add(24 * time.Hour)
	rec.MultiSubjectUntil = &until
	assert.True(t, rec.MultiSubjectUnlocked(now))
	assert.False(t, rec.MultiSubjectUnlocked(now.Add(25*time.Hour)))
}
