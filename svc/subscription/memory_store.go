package subscription

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local development.
// It mirrors the document-store semantics the ledger depends on:
// merge-create on Ensure and atomic increments under one lock.
type MemoryStore struct {
	mu      sync.Mutex
	records map[int64]Record

	// FailWith, when set, is returned by every operation. Tests use it
	// to exercise fail-closed behavior.
	FailWith error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, userID int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return Record{}, s.FailWith
	}
	rec, ok := s.records[userID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Ensure(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.records[rec.UserID]; ok {
		return nil
	}
	s.records[rec.UserID] = rec
	return nil
}

func (s *MemoryStore) Set(ctx context.Context, userID int64, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	rec := s.records[userID]
	rec.UserID = userID
	for k, v := range fields {
		applyField(&rec, k, v)
	}
	s.records[userID] = rec
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, userID int64, deltas map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	rec := s.records[userID]
	rec.UserID = userID
	for k, d := range deltas {
		switch k {
		case "daily_photo_count":
			rec.DailyCount += d
		case "monthly_photo_count":
			rec.MonthlyCount += d
		case "bonus_units":
			rec.BonusUnits += d
		}
	}
	s.records[userID] = rec
	return nil
}

// Len reports the number of stored documents. Tests use it to assert
// idempotent creation.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Put replaces a record wholesale, bypassing merge semantics. Test
// setup helper.
func (s *MemoryStore) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.UserID] = rec
}

func applyField(rec *Record, field string, value any) {
	switch field {
	case "subscription_tier":
		if t, ok := value.(Tier); ok {
			rec.Tier = t
		}
	case "subscription_status":
		if st, ok := value.(Status); ok {
			rec.Status = st
		}
	case "subscription_expiry":
		switch v := value.(type) {
		case nil:
			rec.Expiry = nil
		case time.Time:
			rec.Expiry = &v
		case *time.Time:
			rec.Expiry = v
		}
	case "daily_photo_count":
		if n, ok := value.(int64); ok {
			rec.DailyCount = n
		}
	case "monthly_photo_count":
		if n, ok := value.(int64); ok {
			rec.MonthlyCount = n
		}
	case "last_reset_date":
		if d, ok := value.(string); ok {
			rec.LastResetDate = d
		}
	case "last_monthly_reset":
		if m, ok := value.(string); ok {
			rec.LastMonthlyReset = m
		}
	case "trial_used":
		if b, ok := value.(bool); ok {
			rec.TrialUsed = b
		}
	case "bonus_units":
		if n, ok := value.(int64); ok {
			rec.BonusUnits = n
		}
	case "multi_subject_until":
		switch v := value.(type) {
		case nil:
			rec.MultiSubjectUntil = nil
		case time.Time:
			rec.MultiSubjectUntil = &v
		case *time.Time:
			rec.MultiSubjectUntil = v
		}
	}
}
