package entitlement

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nutrisnap/nutrisnap/svc/subscription"
)

// planFile is the on-disk shape of a plan override file. Every tier
// must be present so the loaded table stays total.
type planFile struct {
	Plans map[string]planEntry `yaml:"plans"`
}

type planEntry struct {
	DailyPhotoLimit      int64    `yaml:"daily_photo_limit"`
	MonthlyPhotoLimit    int64    `yaml:"monthly_photo_limit"`
	Features             []string `yaml:"features"`
	HistoryRetentionDays int      `yaml:"history_retention_days"`
}

// LoadTable reads a plan table from a YAML file. The file must define
// all three tiers and only known feature names; partial overrides are
// rejected so a typo cannot silently strip a tier of its plan.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, errors.Join(ErrFailedToLoadPlans, err)
	}

	var file planFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Table{}, errors.Join(ErrFailedToLoadPlans, err)
	}

	table := Table{}
	for _, tier := range []subscription.Tier{subscription.TierLite, subscription.TierTrial, subscription.TierPro} {
		entry, ok := file.Plans[string(tier)]
		if !ok {
			return Table{}, errors.Join(ErrFailedToLoadPlans,
				fmt.Errorf("plan file %s is missing tier %q", path, tier))
		}
		plan, err := entry.toPlan(tier)
		if err != nil {
			return Table{}, errors.Join(ErrFailedToLoadPlans, err)
		}
		switch tier {
		case subscription.TierLite:
			table.lite = plan
		case subscription.TierTrial:
			table.trial = plan
		case subscription.TierPro:
			table.pro = plan
		}
	}
	return table, nil
}

func (e planEntry) toPlan(tier subscription.Tier) (Plan, error) {
	if e.DailyPhotoLimit < Unlimited || e.DailyPhotoLimit == 0 {
		return Plan{}, fmt.Errorf("tier %q has invalid daily photo limit %d", tier, e.DailyPhotoLimit)
	}
	features := make([]Feature, 0, len(e.Features))
	for _, name := range e.Features {
		f := Feature(name)
		if !f.Valid() {
			return Plan{}, fmt.Errorf("tier %q lists unknown feature %q", tier, name)
		}
		features = append(features, f)
	}
	return Plan{
		Tier:                 tier,
		DailyPhotoLimit:      e.DailyPhotoLimit,
		MonthlyPhotoLimit:    e.MonthlyPhotoLimit,
		Features:             features,
		HistoryRetentionDays: e.HistoryRetentionDays,
	}, nil
}
