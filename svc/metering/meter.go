package metering

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nutrisnap/nutrisnap/pkg/logger"
	"github.com/nutrisnap/nutrisnap/svc/entitlement"
	"github.com/nutrisnap/nutrisnap/svc/subscription"
)

// Ledger is the slice of the subscription ledger the meter needs:
// validated reads and the atomic consumption increment.
type Ledger interface {
	GetRecord(ctx context.Context, userID int64) (subscription.Record, error)
	RecordConsumption(ctx context.Context, userID int64, burnBonus bool) error
}

// Meter implements quota arithmetic on top of the validated record.
// The decision (CanConsume) and the commit (RecordConsumption) are
// separate calls so quota is only charged for actions that actually
// succeeded downstream.
type Meter struct {
	ledger Ledger
	table  entitlement.Table
	log    *slog.Logger
}

// Option configures a Meter.
type Option func(*Meter)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Meter) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMeter wires a Meter over the ledger and policy table.
func NewMeter(ledger Ledger, table entitlement.Table, opts ...Option) *Meter {
	if ledger == nil {
		panic("metering: ledger cannot be nil")
	}
	m := &Meter{
		ledger: ledger,
		table:  table,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CanConsume reports whether the user may run one more photo analysis.
// The comparison is tier-relative: a tier change alone never resets the
// counter, it just moves the limit. Bonus units cover overage once the
// daily limit is exhausted.
func (m *Meter) CanConsume(ctx context.Context, userID int64) (entitlement.Decision, error) {
	rec, err := m.ledger.GetRecord(ctx, userID)
	if err != nil {
		return entitlement.Deny(entitlement.ReasonSystemError), err
	}

	plan := m.table.PlanFor(rec.Tier)
	if plan.DailyPhotoLimit == entitlement.Unlimited {
		return entitlement.Allow(), nil
	}

	if rec.DailyCount < plan.DailyPhotoLimit {
		return entitlement.Allow(), nil
	}
	if rec.BonusUnits > 0 {
		return entitlement.Allow(), nil
	}

	return entitlement.Deny(fmt.Sprintf("daily limit reached (%d/%d)",
		rec.DailyCount, plan.DailyPhotoLimit)), nil
}

// RecordConsumption charges one completed analysis: daily and monthly
// counters move in a single atomic store increment, and when the daily
// limit was already spent one bonus unit burns in the same write. Call
// it only after the gated action succeeded.
func (m *Meter) RecordConsumption(ctx context.Context, userID int64) error {
	rec, err := m.ledger.GetRecord(ctx, userID)
	if err != nil {
		return err
	}

	plan := m.table.PlanFor(rec.Tier)
	overLimit := plan.DailyPhotoLimit != entitlement.Unlimited &&
		rec.DailyCount >= plan.DailyPhotoLimit
	burnBonus := overLimit && rec.BonusUnits > 0

	if err := m.ledger.RecordConsumption(ctx, userID, burnBonus); err != nil {
		m.log.ErrorContext(ctx, "failed to record consumption",
			logger.UserID(userID), logger.Error(err))
		return err
	}
	return nil
}

// Usage reports the user's current daily usage against the tier limit,
// for rendering status screens. Bonus units are reported separately.
func (m *Meter) Usage(ctx context.Context, userID int64) (used, limit, bonus int64, err error) {
	rec, err := m.ledger.GetRecord(ctx, userID)
	if err != nil {
		return 0, 0, 0, err
	}
	plan := m.table.PlanFor(rec.Tier)
	return rec.DailyCount, plan.DailyPhotoLimit, rec.BonusUnits, nil
}
