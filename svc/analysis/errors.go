package analysis

import "errors"

var (
	ErrNotFound    = errors.New("analysis.errors.entry_not_found")
	ErrNoDraft     = errors.New("analysis.errors.no_recent_draft")
	ErrPersistence = errors.New("analysis.errors.persistence_failure")
	ErrEmptyEntry  = errors.New("analysis.errors.empty_entry")
)
