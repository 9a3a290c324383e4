package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nutrisnap/nutrisnap/pkg/logger"
	"github.com/nutrisnap/nutrisnap/svc/subscription"
)

// RecordSource resolves the validated subscription record for a user.
// Implemented by subscription.Ledger.
type RecordSource interface {
	GetRecord(ctx context.Context, userID int64) (subscription.Record, error)
}

// QuotaChecker answers whether a user may consume one unit of photo
// quota right now. Implemented by metering.Meter; the indirection keeps
// the gate free of quota arithmetic.
type QuotaChecker interface {
	CanConsume(ctx context.Context, userID int64) (Decision, error)
}

// Gate is the single decision point handlers call before any gated
// action. It composes the policy table, the ledger and the quota
// checker into one allow/deny answer with a presentable reason.
//
// The gate never increments counters. Decision and commit are separate
// on purpose: the caller performs the gated action first and charges
// quota only once it succeeded, so a failed vision call costs nothing.
type Gate struct {
	table  Table
	source RecordSource
	quotas QuotaChecker
	now    func() time.Time
	log    *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithNowFunc overrides the gate's time source for tests.
func WithNowFunc(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) GateOption {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGate wires a Gate. Panics on nil collaborators to fail fast on
// wiring mistakes.
func NewGate(table Table, source RecordSource, quotas QuotaChecker, opts ...GateOption) *Gate {
	if source == nil {
		panic("entitlement: record source cannot be nil")
	}
	if quotas == nil {
		panic("entitlement: quota checker cannot be nil")
	}
	g := &Gate{
		table:  table,
		source: source,
		quotas: quotas,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Table exposes the policy table, e.g. for rendering plan comparisons.
func (g *Gate) Table() Table {
	return g.table
}

// CheckFeature decides whether the user's tier includes the feature.
// Pure read, no side effects. Feature gating is orthogonal to quota: an
// exhausted daily counter never blocks a feature check.
func (g *Gate) CheckFeature(ctx context.Context, userID int64, feature Feature) (Decision, error) {
	if !feature.Valid() {
		return Deny(fmt.Sprintf("unknown feature %q", feature)), ErrUnknownFeature
	}

	rec, err := g.source.GetRecord(ctx, userID)
	if err != nil {
		// Fail closed: a store failure is a denial, never an allow.
		g.log.ErrorContext(ctx, "feature check failed",
			logger.UserID(userID), logger.Feature(string(feature)), logger.Error(err))
		return Deny(ReasonSystemError), err
	}

	// Temporary unlocks bought with stars sit on the record and beat
	// the tier's plan for the duration of the purchase.
	if feature == FeatureMultiSubject && rec.MultiSubjectUnlocked(g.now()) {
		return Allow(), nil
	}

	plan := g.table.PlanFor(rec.Tier)
	if !plan.HasFeature(feature) {
		return Deny(upsellReason(feature)), nil
	}
	return Allow(), nil
}

// CheckAndReserveQuota decides whether one photo analysis may proceed.
// It delegates to the quota checker and does not increment anything;
// callers call metering.RecordConsumption themselves after the analysis
// succeeds.
func (g *Gate) CheckAndReserveQuota(ctx context.Context, userID int64) (Decision, error) {
	decision, err := g.quotas.CanConsume(ctx, userID)
	if err != nil {
		g.log.ErrorContext(ctx, "quota check failed",
			logger.UserID(userID), logger.Error(err))
		return Deny(ReasonSystemError), err
	}
	return decision, nil
}

// upsellReason maps a denied feature to the message shown to the user.
func upsellReason(feature Feature) string {
	switch feature {
	case FeatureMultiSubject:
		return "multi-dish analysis is available on Pro"
	case FeatureMicronutrients:
		return "detailed vitamin and mineral breakdown is available on Pro"
	case FeatureSmartTips:
		return "smart recommendations are available on Pro"
	case FeatureExport:
		return "export is available on Pro"
	case FeatureCalendarSync:
		return "calendar sync is available on Pro"
	case FeaturePriorityQueue:
		return "priority processing is available on Pro"
	default:
		return "this feature is not included in your plan"
	}
}
