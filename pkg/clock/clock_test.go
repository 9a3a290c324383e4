package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nutrisnap/nutrisnap/pkg/clock"
)

func TestToday(t *testing.T) {
	t.Parallel()

	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2025, 3, 14, 23, 30, 0, 0, loc)

	assert.Equal(t, "2025-03-15", clock.Today(now))
	assert.Equal(t, "2025-03", clock.ThisMonth(now))
}

func TestDayRolledOver(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		lastReset string
		want      bool
	}{
		{"yesterday", "2025-03-14", true},
		{"today", "2025-03-15", false},
		{"future date stays put", "2025-03-16", false},
		{"last year", "2024-12-31", true},
		{"empty counts as rolled over", "", true},
		{"garbage counts as rolled over", "not-a-date", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, clock.DayRolledOver(tt.lastReset, now))
		})
	}
}

func TestMonthRolledOver(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 0, 0, 1, 0, time.UTC)

	assert.True(t, clock.MonthRolledOver("2025-02", now))
	assert.False(t, clock.MonthRolledOver("2025-03", now))
	assert.True(t, clock.MonthRolledOver("", now))
	assert.True(t, clock.MonthRolledOver("nope", now))
}

func TestPeriods(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7*24*time.Hour, clock.TrialPeriod())
	assert.Equal(t, 30*24*time.Hour, clock.BillingPeriod(1))
	assert.Equal(t, 90*24*time.Hour, clock.BillingPeriod(3))
	// Zero and negative months clamp to one billing month.
	assert.Equal(t, 30*24*time.Hour, clock.BillingPeriod(0))
}

func TestExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, clock.Expired(nil, now))
	assert.True(t, clock.Expired(&past, now))
	assert.True(t, clock.Expired(&now, now), "expiry equal to now counts as expired")
	assert.False(t, clock.Expired(&future, now))
}
