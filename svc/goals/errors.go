package goals

import "errors"

var (
	ErrNotSet         = errors.New("goals.errors.goal_not_set")
	ErrInvalidProfile = errors.New("goals.errors.invalid_profile")
	ErrPersistence    = errors.New("goals.errors.persistence_failure")
)
