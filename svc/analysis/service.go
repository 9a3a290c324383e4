package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/nutrisnap/nutrisnap/pkg/clock"
	"github.com/nutrisnap/nutrisnap/pkg/logger"
)

// Service records analysis results and answers daily and period queries
// over them. Drafts of the most recent analysis stay editable for a
// short window through the DraftCache.
type Service struct {
	store  Store
	drafts DraftCache
	now    func() time.Time
	log    *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithNowFunc overrides the time source, primarily for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates an analysis Service. Store and draft cache are
// required.
func NewService(store Store, drafts DraftCache, opts ...Option) *Service {
	if store == nil {
		panic("analysis: store is required")
	}
	if drafts == nil {
		panic("analysis: draft cache is required")
	}
	s := &Service{
		store:  store,
		drafts: drafts,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveEntry normalizes and persists an analysis result. The dish name
// is canonicalized and the calendar date derived from the timestamp.
// Entries with neither a dish name nor any calories are rejected.
func (s *Service) SaveEntry(ctx context.Context, entry Entry) (Entry, error) {
	entry.DishName = NormalizeDishName(entry.DishName)
	if entry.DishName == "" && entry.Calories == 0 {
		return Entry{}, ErrEmptyEntry
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	entry.Timestamp = entry.Timestamp.UTC()
	entry.Date = entry.Timestamp.Format(clock.DateLayout)

	saved, err := s.store.Save(ctx, entry)
	if err != nil {
		return Entry{}, err
	}

	s.log.InfoContext(ctx, "analysis entry saved",
		logger.Component("analysis"),
		logger.UserID(entry.UserID),
		slog.String("date", entry.Date))
	return saved, nil
}

// DailyTotals aggregates a user's nutrition for one calendar day and
// returns the entry count alongside.
func (s *Service) DailyTotals(ctx context.Context, userID int64, date string) (Totals, int, error) {
	entries, err := s.store.ListByDate(ctx, userID, date)
	if err != nil {
		return Totals{}, 0, err
	}
	return Aggregate(entries), len(entries), nil
}

// TodayTotals is DailyTotals for the current UTC day.
func (s *Service) TodayTotals(ctx context.Context, userID int64) (Totals, int, error) {
	return s.DailyTotals(ctx, userID, clock.Today(s.now()))
}

// History returns the user's entries from the last retentionDays days,
// oldest first. A non-positive retention means unlimited history.
func (s *Service) History(ctx context.Context, userID int64, retentionDays int) ([]Entry, error) {
	now := s.now().UTC()
	from := time.Time{}
	if retentionDays > 0 {
		from = now.AddDate(0, 0, -retentionDays)
	}
	return s.store.ListBetween(ctx, userID, from, now)
}

// PeriodTotals aggregates nutrition over the trailing days window.
func (s *Service) PeriodTotals(ctx context.Context, userID int64, days int) (Totals, int, error) {
	entries, err := s.History(ctx, userID, days)
	if err != nil {
		return Totals{}, 0, err
	}
	return Aggregate(entries), len(entries), nil
}

// StoreDraft caches the analysis for follow-up edits.
func (s *Service) StoreDraft(ctx context.Context, userID int64, draft Draft) error {
	if draft.OriginalText == "" {
		draft.OriginalText = draft.Text
	}
	draft.StoredAt = s.now()
	return s.drafts.Put(ctx, userID, draft)
}

// LastDraft returns the user's editable draft, or ErrNoDraft.
func (s *Service) LastDraft(ctx context.Context, userID int64) (Draft, error) {
	return s.drafts.Get(ctx, userID)
}

// UpdateDraft replaces the draft text, keeping the original for undo.
func (s *Service) UpdateDraft(ctx context.Context, userID int64, text string) error {
	draft, err := s.drafts.Get(ctx, userID)
	if err != nil {
		return err
	}
	draft.Text = text
	draft.StoredAt = s.now()
	return s.drafts.Put(ctx, userID, draft)
}

// DiscardDraft drops the user's draft.
func (s *Service) DiscardDraft(ctx context.Context, userID int64) error {
	return s.drafts.Delete(ctx, userID)
}
