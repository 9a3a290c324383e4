package goals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nutrisnap/nutrisnap/pkg/logger"
)

// DayNutrition is one day's consumed totals.
type DayNutrition struct {
	Calories  float64
	ProteinsG float64
	FatsG     float64
	CarbsG    float64
}

// Advisor produces a free-form nutrition tip from the day's intake.
// Optional, see WithAdvisor.
type Advisor interface {
	Advise(ctx context.Context, goal Goal, day DayNutrition) (string, error)
}

// Service manages personal nutrition goals and turns daily intake into
// actionable recommendations.
type Service struct {
	store    Store
	advisor  Advisor
	validate *validator.Validate
	now      func() time.Time
	log      *slog.Logger
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

// WithAdvisor adds AI-generated tips to rule-based recommendations.
func WithAdvisor(a Advisor) Option {
	return func(s *Service) {
		s.advisor = a
	}
}

// NewService creates a goals Service. The store is required.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("goals: store is required")
	}
	s := &Service{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetGoal validates the profile, computes the calorie budget and stores
// the goal. Returns the stored goal.
func (s *Service) SetGoal(ctx context.Context, userID int64, profile Profile) (Goal, error) {
	if !profile.GoalType.Valid() {
		return Goal{}, ErrInvalidProfile
	}
	if profile.ActivityLevel == "" {
		profile.ActivityLevel = Moderate
	}
	if err := s.validate.Struct(profile); err != nil {
		return Goal{}, errors.Join(ErrInvalidProfile, err)
	}

	now := s.now()
	goal := Goal{
		GoalType:      profile.GoalType,
		TargetWeight:  profile.TargetWeight,
		CurrentWeight: profile.CurrentWeight,
		Height:        profile.Height,
		Age:           profile.Age,
		ActivityLevel: profile.ActivityLevel,
		DailyCalories: DailyCalories(profile),
		SetAt:         now,
		UpdatedAt:     now,
	}
	if err := s.store.Set(ctx, userID, goal); err != nil {
		return Goal{}, err
	}

	s.log.InfoContext(ctx, "personal goal set",
		logger.Component("goals"),
		logger.UserID(userID),
		logger.Event(string(goal.GoalType)))
	return goal, nil
}

// GetGoal returns the user's goal, or ErrNotSet.
func (s *Service) GetGoal(ctx context.Context, userID int64) (Goal, error) {
	return s.store.Get(ctx, userID)
}

// calorieTolerance is how far off budget a day can be before it is
// worth a recommendation.
const calorieTolerance = 200

// Recommendations compares the day's intake against the goal's budget
// and macro split and returns concrete suggestions. An empty slice
// means the day is on track. When an Advisor is configured its tip is
// appended; advisor failures are logged and skipped.
func (s *Service) Recommendations(ctx context.Context, goal Goal, day DayNutrition) []string {
	var recs []string

	diff := day.Calories - float64(goal.DailyCalories)
	if math.Abs(diff) > calorieTolerance {
		if diff > 0 {
			recs = append(recs, fmt.Sprintf("You are %.0f kcal over budget today. Consider a light dinner.", diff))
		} else {
			recs = append(recs, fmt.Sprintf("You are %.0f kcal under budget today. Add a healthy snack.", -diff))
		}
	}

	targets := Macros(goal.GoalType, goal.DailyCalories)
	if day.ProteinsG < targets.ProteinsG*0.8 {
		recs = append(recs, fmt.Sprintf("Low on protein. Add %.0fg: chicken, cottage cheese, eggs.", targets.ProteinsG-day.ProteinsG))
	}
	if day.FatsG < targets.FatsG*0.7 {
		recs = append(recs, fmt.Sprintf("Low on fats. Add %.0fg: nuts, avocado, olive oil.", targets.FatsG-day.FatsG))
	}
	if day.CarbsG < targets.CarbsG*0.8 {
		recs = append(recs, fmt.Sprintf("Low on carbs. Add %.0fg: grains, fruit, vegetables.", targets.CarbsG-day.CarbsG))
	}

	switch goal.GoalType {
	case WeightLoss:
		if diff > 0 {
			recs = append(recs, "For weight loss, favor protein over simple carbs.")
		}
	case MuscleGain:
		if day.ProteinsG < targets.ProteinsG {
			recs = append(recs, "For muscle gain, aim for 1.6-2g of protein per kg of body weight.")
		}
	}

	if s.advisor != nil {
		tip, err := s.advisor.Advise(ctx, goal, day)
		if err != nil {
			s.log.WarnContext(ctx, "advisor tip unavailable",
				logger.Component("goals"),
				logger.Error(err))
		} else if tip != "" {
			recs = append(recs, tip)
		}
	}

	return recs
}

// Progress summarizes adherence over a period.
type Progress struct {
	PeriodDays      int
	AvgCalories     float64
	AvgProteinsG    float64
	AvgFatsG        float64
	AvgCarbsG       float64
	CalorieTarget   int
	CalorieAccuracy float64 // average as percent of target
	GoalType        GoalType
	AnalysesCount   int
}

// ProgressFor averages period totals against the goal's calorie target.
// Days must be positive.
func ProgressFor(goal Goal, totals DayNutrition, days, analysesCount int) Progress {
	if days < 1 {
		days = 1
	}
	d := float64(days)
	avgCalories := totals.Calories / d

	accuracy := 0.0
	if goal.DailyCalories > 0 {
		accuracy = math.Round(avgCalories/float64(goal.DailyCalories)*1000) / 10
	}

	return Progress{
		PeriodDays:      days,
		AvgCalories:     math.Round(avgCalories),
		AvgProteinsG:    math.Round(totals.ProteinsG/d*10) / 10,
		AvgFatsG:        math.Round(totals.FatsG/d*10) / 10,
		AvgCarbsG:       math.Round(totals.CarbsG/d*10) / 10,
		CalorieTarget:   goal.DailyCalories,
		CalorieAccuracy: accuracy,
		GoalType:        goal.GoalType,
		AnalysesCount:   analysesCount,
	}
}
