package calendar

import "errors"

var (
	ErrNotConnected    = errors.New("calendar.errors.not_connected")
	ErrInvalidCode     = errors.New("calendar.errors.invalid_authorization_code")
	ErrEventFailed     = errors.New("calendar.errors.event_creation_failed")
	ErrPersistence     = errors.New("calendar.errors.persistence_failure")
	ErrMissingClientID = errors.New("calendar.errors.oauth_client_not_configured")
)
