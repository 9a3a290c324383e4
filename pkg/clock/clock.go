package clock

import "time"

// DateLayout is the calendar-date format stored on subscription documents.
const DateLayout = "2006-01-02"

// MonthLayout is the calendar-month format used for monthly counter resets.
const MonthLayout = "2006-01"

const (
	trialDays           = 7
	billingDaysPerMonth = 30
)

// Today returns the UTC calendar date of the given instant.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// ThisMonth returns the UTC calendar month of the given instant.
func ThisMonth(now time.Time) string {
	return now.UTC().Format(MonthLayout)
}

// DayRolledOver reports whether a new UTC day has started since lastReset.
// Empty or malformed dates count as rolled over so that a repair always
// lands the record on a valid date.
func DayRolledOver(lastReset string, now time.Time) bool {
	if lastReset == "" {
		return true
	}
	last, err := time.ParseInLocation(DateLayout, lastReset, time.UTC)
	if err != nil {
		return true
	}
	today, _ := time.ParseInLocation(DateLayout, Today(now), time.UTC)
	return last.Before(today)
}

// MonthRolledOver reports whether a new UTC calendar month has started
// since lastReset. Semantics mirror DayRolledOver for bad input.
func MonthRolledOver(lastReset string, now time.Time) bool {
	if lastReset == "" {
		return true
	}
	last, err := time.ParseInLocation(MonthLayout, lastReset, time.UTC)
	if err != nil {
		return true
	}
	month, _ := time.ParseInLocation(MonthLayout, ThisMonth(now), time.UTC)
	return last.Before(month)
}

// TrialPeriod returns the fixed length of the Pro trial.
func TrialPeriod() time.Duration {
	return trialDays * 24 * time.Hour
}

// BillingPeriod returns the paid subscription length for the given number
// of months. Months are a fixed 30 days, not calendar months.
func BillingPeriod(months int) time.Duration {
	if months < 1 {
		months = 1
	}
	return time.Duration(months) * billingDaysPerMonth * 24 * time.Hour
}

// Expired reports whether the given expiry has passed. A nil expiry never
// expires.
func Expired(expiry *time.Time, now time.Time) bool {
	if expiry == nil {
		return false
	}
	return !expiry.After(now.UTC())
}
