package goals_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutrisnap/nutrisnap/svc/goals"
)

func TestDailyCalories(t *testing.T) {
	t.Parallel()

	t.Run("mifflin st jeor with activity factor", func(t *testing.T) {
		t.Parallel()

		// BMR = 10*80 + 6.25*180 - 5*30 + 5 = 1780, x1.55 = 2759
		p := goals.Profile{
			GoalType:      goals.Maintenance,
			CurrentWeight: 80,
			Height:        180,
			Age:           30,
			ActivityLevel: goals.Moderate,
		}
		assert.Equal(t, 2759, goals.DailyCalories(p))
	})

	t.Run("weight loss subtracts deficit", func(t *testing.T) {
		t.Parallel()

		p := goals.Profile{
			GoalType:      goals.WeightLoss,
			CurrentWeight: 80,
			Height:        180,
			Age:           30,
			ActivityLevel: goals.Moderate,
		}
		assert.Equal(t, 2259, goals.DailyCalories(p))
	})

	t.Run("muscle gain adds surplus", func(t *testing.T) {
		t.Parallel()

		p := goals.Profile{
			GoalType:      goals.MuscleGain,
			CurrentWeight: 80,
			Height:        180,
			Age:           30,
			ActivityLevel: goals.Moderate,
		}
		assert.Equal(t, 2959, goals.DailyCalories(p))
	})

	t.Run("incomplete profile uses baseline", func(t *testing.T) {
		t.Parallel()

		p := goals.Profile{GoalType: goals.WeightLoss, CurrentWeight: 80}
		assert.Equal(t, 1500, goals.DailyCalories(p))
	})

	t.Run("floor at 1200", func(t *testing.T) {
		t.Parallel()

		// Tiny sedentary profile: BMR = 10*40 + 6.25*150 - 5*80 + 5 = 942.5
		// x1.2 = 1131, -500 = 631, floored.
		p := goals.Profile{
			GoalType:      goals.WeightLoss,
			CurrentWeight: 40,
			Height:        150,
			Age:           80,
			ActivityLevel: goals.Sedentary,
		}
		assert.Equal(t, 1200, goals.DailyCalories(p))
	})

	t.Run("unknown activity level defaults to moderate", func(t *testing.T) {
		t.Parallel()

		p := goals.Profile{
			GoalType:      goals.Maintenance,
			CurrentWeight: 80,
			Height:        180,
			Age:           30,
			ActivityLevel: goals.ActivityLevel("couch"),
		}
		assert.Equal(t, 2759, goals.DailyCalories(p))
	})
}

func TestMacros(t *testing.T) {
	t.Parallel()

	t.Run("maintenance split at 2000 kcal", func(t *testing.T) {
		t.Parallel()

		// 25/30/45 split: 2000*0.25/4, 2000*0.30/9, 2000*0.45/4.
		m := goals.Macros(goals.Maintenance, 2000)
		assert.InDelta(t, 125, m.ProteinsG, 0.01)
		assert.InDelta(t, 66.67, m.FatsG, 0.01)
		assert.InDelta(t, 225, m.CarbsG, 0.01)
	})

	t.Run("muscle gain is protein heavy", func(t *testing.T) {
		t.Parallel()

		m := goals.Macros(goals.MuscleGain, 2000)
		assert.InDelta(t, 175, m.ProteinsG, 0.01) // 2000*0.35/4
	})

	t.Run("unknown goal falls back to maintenance split", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, goals.Macros(goals.Maintenance, 2000), goals.Macros(goals.GoalType("bulk"), 2000))
	})
}
