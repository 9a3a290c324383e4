package subscription

import "errors"

// Domain errors for ledger operations.
var (
	// ErrNotFound is returned by stores when no document exists for the
	// user. The ledger treats it as a first touch, never as a failure.
	ErrNotFound = errors.New("subscription.errors.record_not_found")

	// ErrPersistence wraps any store-layer failure (connectivity,
	// timeout, serialization). Callers must fail closed on it.
	ErrPersistence = errors.New("subscription.errors.persistence_failed")

	// ErrTrialAlreadyUsed is returned when trial activation is requested
	// for a user whose trial flag is already set. Expected and frequent,
	// never fatal.
	ErrTrialAlreadyUsed = errors.New("subscription.errors.trial_already_used")

	// ErrInvalidDuration is returned for non-positive Pro durations.
	ErrInvalidDuration = errors.New("subscription.errors.invalid_duration")

	// ErrInvalidBonusCount is returned for non-positive bonus grants.
	ErrInvalidBonusCount = errors.New("subscription.errors.invalid_bonus_count")
)
