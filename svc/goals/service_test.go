package goals_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisnap/nutrisnap/svc/goals"
)

type fakeAdvisor struct {
	tip string
	err error
}

func (f *fakeAdvisor) Advise(_ context.Context, _ goals.Goal, _ goals.DayNutrition) (string, error) {
	return f.tip, f.err
}

func TestService_SetGoal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("stores goal with computed budget", func(t *testing.T) {
		t.Parallel()

		store := goals.NewMemoryStore()
		svc := goals.NewService(store, goals.WithNowFunc(func() time.Time { return now }))

		goal, err := svc.SetGoal(ctx, 42, goals.Profile{
			GoalType:      goals.WeightLoss,
			CurrentWeight: 80,
			Height:        180,
			Age:           30,
			ActivityLevel: goals.Moderate,
		})
		require.NoError(t, err)
		assert.Equal(t, 2259, goal.DailyCalories)
		assert.True(t, goal.SetAt.Equal(now))

		stored, err := svc.GetGoal(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, goal, stored)
	})

	t.Run("defaults activity to moderate", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore())
		goal, err := svc.SetGoal(ctx, 42, goals.Profile{GoalType: goals.Maintenance})
		require.NoError(t, err)
		assert.Equal(t, goals.Moderate, goal.ActivityLevel)
	})

	t.Run("rejects unknown goal type", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore())
		_, err := svc.SetGoal(ctx, 42, goals.Profile{GoalType: goals.GoalType("get_swole")})
		assert.ErrorIs(t, err, goals.ErrInvalidProfile)
	})

	t.Run("rejects out of range metrics", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore())
		_, err := svc.SetGoal(ctx, 42, goals.Profile{
			GoalType:      goals.WeightLoss,
			CurrentWeight: 1000,
		})
		assert.ErrorIs(t, err, goals.ErrInvalidProfile)
	})

	t.Run("missing goal returns ErrNotSet", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore())
		_, err := svc.GetGoal(ctx, 99)
		assert.ErrorIs(t, err, goals.ErrNotSet)
	})
}

func TestService_Recommendations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	goal := goals.Goal{GoalType: goals.Maintenance, DailyCalories: 2000}

	onTrack := goals.DayNutrition{Calories: 2000, ProteinsG: 125, FatsG: 67, CarbsG: 225}

	t.Run("on track day yields nothing", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore())
		assert.Empty(t, svc.Recommendations(ctx, goal, onTrack))
	})

	t.Run("flags calorie overshoot", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore())
		day := onTrack
		day.Calories = 2500
		recs := svc.Recommendations(ctx, goal, day)
		require.NotEmpty(t, recs)
		assert.Contains(t, recs[0], "500 kcal over")
	})

	t.Run("flags low macros", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore())
		recs := svc.Recommendations(ctx, goal, goals.DayNutrition{Calories: 2000})
		joined := strings.Join(recs, "\n")
		assert.Contains(t, joined, "protein")
		assert.Contains(t, joined, "fats")
		assert.Contains(t, joined, "carbs")
	})

	t.Run("weight loss tip on overshoot", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore())
		lossGoal := goals.Goal{GoalType: goals.WeightLoss, DailyCalories: 1500}
		day := goals.DayNutrition{Calories: 1800, ProteinsG: 100, FatsG: 50, CarbsG: 160}
		recs := svc.Recommendations(ctx, lossGoal, day)
		assert.Contains(t, strings.Join(recs, "\n"), "weight loss")
	})

	t.Run("advisor tip is appended", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore(),
			goals.WithAdvisor(&fakeAdvisor{tip: "drink more water"}))
		recs := svc.Recommendations(ctx, goal, onTrack)
		require.Len(t, recs, 1)
		assert.Equal(t, "drink more water", recs[0])
	})

	t.Run("advisor failure is skipped", func(t *testing.T) {
		t.Parallel()

		svc := goals.NewService(goals.NewMemoryStore(),
			goals.WithAdvisor(&fakeAdvisor{err: errors.New("model offline")}))
		assert.Empty(t, svc.Recommendations(ctx, goal, onTrack))
	})
}

func TestProgressFor(t *testing.T) {
	t.Parallel()

	goal := goals.Goal{GoalType: goals.Maintenance, DailyCalories: 2000}
	totals := goals.DayNutrition{Calories: 13300, ProteinsG: 840, FatsG: 455, CarbsG: 1540}

	p := goals.ProgressFor(goal, totals, 7, 21)
	assert.Equal(t, 7, p.PeriodDays)
	assert.Equal(t, float64(1900), p.AvgCalories)
	assert.Equal(t, 120.0, p.AvgProteinsG)
	assert.Equal(t, 65.0, p.AvgFatsG)
	assert.Equal(t, 220.0, p.AvgCarbsG)
	assert.Equal(t, 95.0, p.CalorieAccuracy)
	assert.Equal(t, 21, p.AnalysesCount)
}
