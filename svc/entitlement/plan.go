package entitlement

import (
	"slices"

	"github.com/nutrisnap/nutrisnap/svc/subscription"
)

// Feature is a tier-gated capability.
type Feature string

const (
	FeatureBasicAnalysis  Feature = "basic_analysis"
	FeatureMultiSubject   Feature = "multi_subject"
	FeatureMicronutrients Feature = "micronutrients"
	FeatureSmartTips      Feature = "smart_tips"
	FeatureExport         Feature = "export"
	FeatureCalendarSync   Feature = "calendar_sync"
	FeaturePriorityQueue  Feature = "priority_queue"
)

// KnownFeatures lists every feature the gate understands.
var KnownFeatures = []Feature{
	FeatureBasicAnalysis,
	FeatureMultiSubject,
	FeatureMicronutrients,
	FeatureSmartTips,
	FeatureExport,
	FeatureCalendarSync,
	FeaturePriorityQueue,
}

// Valid reports whether the feature name is known.
func (f Feature) Valid() bool {
	return slices.Contains(KnownFeatures, f)
}

// Unlimited marks a limit with no cap.
const Unlimited int64 = -1

// Plan describes the entitlements of one subscription tier. The table
// is static, loaded at process start, and never reconfigured at runtime.
type Plan struct {
	Tier                 subscription.Tier
	DailyPhotoLimit      int64
	MonthlyPhotoLimit    int64
	Features             []Feature
	HistoryRetentionDays int // -1 keeps history forever
}

// HasFeature reports whether the plan includes the feature.
func (p Plan) HasFeature(f Feature) bool {
	return slices.Contains(p.Features, f)
}

var (
	litePlan = Plan{
		Tier:                 subscription.TierLite,
		DailyPhotoLimit:      5,
		MonthlyPhotoLimit:    150,
		Features:             []Feature{FeatureBasicAnalysis},
		HistoryRetentionDays: 7,
	}
	trialPlan = Plan{
		Tier:              subscription.TierTrial,
		DailyPhotoLimit:   200,
		MonthlyPhotoLimit: 200,
		Features: []Feature{
			FeatureBasicAnalysis,
			FeatureMultiSubject,
			FeatureMicronutrients,
			FeatureSmartTips,
			FeatureExport,
			FeatureCalendarSync,
			FeaturePriorityQueue,
		},
		HistoryRetentionDays: Forever,
	}
	proPlan = Plan{
		Tier:              subscription.TierPro,
		DailyPhotoLimit:   200,
		MonthlyPhotoLimit: 200,
		Features: []Feature{
			FeatureBasicAnalysis,
			FeatureMultiSubject,
			FeatureMicronutrients,
			FeatureSmartTips,
			FeatureExport,
			FeatureCalendarSync,
			FeaturePriorityQueue,
		},
		HistoryRetentionDays: Forever,
	}
)

// Forever disables the history retention window.
const Forever = -1

// Table maps every tier to its plan. It is a total function over the
// tier enum: unknown tiers fall back to the Lite plan instead of a
// silent zero value.
type Table struct {
	lite, trial, pro Plan
}

// DefaultTable returns the built-in policy table.
func DefaultTable() Table {
	return Table{lite: litePlan, trial: trialPlan, pro: proPlan}
}

// PlanFor resolves the plan for a tier. Total: anything that is not
// Trial or Pro gets the Lite plan.
func (t Table) PlanFor(tier subscription.Tier) Plan {
	switch tier {
	case subscription.TierTrial:
		return t.trial
	case subscription.TierPro:
		return t.pro
	default:
		return t.lite
	}
}
