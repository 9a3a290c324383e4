package goals

import "time"

// GoalType is what the user wants their nutrition to achieve.
type GoalType string

const (
	WeightLoss        GoalType = "weight_loss"
	WeightGain        GoalType = "weight_gain"
	Maintenance       GoalType = "maintenance"
	MuscleGain        GoalType = "muscle_gain"
	HealthImprovement GoalType = "health_improvement"
)

// Valid reports whether the goal type is one of the supported values.
func (g GoalType) Valid() bool {
	switch g {
	case WeightLoss, WeightGain, Maintenance, MuscleGain, HealthImprovement:
		return true
	}
	return false
}

// ActivityLevel scales basal metabolic rate to total daily expenditure.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

// Multiplier returns the standard activity factor. Unknown levels fall
// back to moderate.
func (a ActivityLevel) Multiplier() float64 {
	switch a {
	case Sedentary:
		return 1.2
	case Light:
		return 1.375
	case Moderate:
		return 1.55
	case Active:
		return 1.725
	case VeryActive:
		return 1.9
	}
	return 1.55
}

// goalAdjustment tunes the calorie budget and macro split per goal.
// Adjust is added to maintenance calories, so deficits are negative.
type goalAdjustment struct {
	Adjust       int
	ProteinRatio float64
	FatRatio     float64
	CarbRatio    float64
}

var goalAdjustments = map[GoalType]goalAdjustment{
	WeightLoss:        {Adjust: -500, ProteinRatio: 0.25, FatRatio: 0.25, CarbRatio: 0.50},
	WeightGain:        {Adjust: 300, ProteinRatio: 0.30, FatRatio: 0.25, CarbRatio: 0.45},
	Maintenance:       {Adjust: 0, ProteinRatio: 0.25, FatRatio: 0.30, CarbRatio: 0.45},
	MuscleGain:        {Adjust: 200, ProteinRatio: 0.35, FatRatio: 0.20, CarbRatio: 0.45},
	HealthImprovement: {Adjust: 0, ProteinRatio: 0.25, FatRatio: 0.30, CarbRatio: 0.45},
}

const (
	// defaultDailyCalories is used when the profile lacks body metrics.
	defaultDailyCalories = 2000
	// minDailyCalories is the safety floor after goal adjustment.
	minDailyCalories = 1200
)

// Profile carries the body metrics needed for the calorie calculation.
// Weight is kg, height cm. Zero values mean unknown.
type Profile struct {
	GoalType      GoalType      `validate:"required"`
	TargetWeight  float64       `validate:"omitempty,gt=20,lt=400"`
	CurrentWeight float64       `validate:"omitempty,gt=20,lt=400"`
	Height        float64       `validate:"omitempty,gt=50,lt=280"`
	Age           int           `validate:"omitempty,gt=10,lt=120"`
	ActivityLevel ActivityLevel `validate:"omitempty,oneof=sedentary light moderate active very_active"`
}

// Goal is the stored personal goal, embedded in the user document.
type Goal struct {
	GoalType      GoalType      `bson:"goal_type"`
	TargetWeight  float64       `bson:"target_weight,omitempty"`
	CurrentWeight float64       `bson:"current_weight,omitempty"`
	Height        float64       `bson:"height,omitempty"`
	Age           int           `bson:"age,omitempty"`
	ActivityLevel ActivityLevel `bson:"activity_level"`
	DailyCalories int           `bson:"daily_calories"`
	SetAt         time.Time     `bson:"goal_set_at"`
	UpdatedAt     time.Time     `bson:"last_updated"`
}

// DailyCalories computes the daily calorie budget for a profile using
// the Mifflin-St Jeor equation scaled by activity, then shifted by the
// goal's deficit or surplus. Profiles without full body metrics use a
// flat 2000 kcal baseline. The result never drops below 1200 kcal.
func DailyCalories(p Profile) int {
	base := defaultDailyCalories
	if p.CurrentWeight > 0 && p.Height > 0 && p.Age > 0 {
		bmr := 10*p.CurrentWeight + 6.25*p.Height - 5*float64(p.Age) + 5
		base = int(bmr * p.ActivityLevel.Multiplier())
	}

	adj, ok := goalAdjustments[p.GoalType]
	if ok {
		base += adj.Adjust
	}
	if base < minDailyCalories {
		return minDailyCalories
	}
	return base
}

// MacroTargets is a daily macronutrient budget in grams.
type MacroTargets struct {
	ProteinsG float64
	FatsG     float64
	CarbsG    float64
}

// Macros converts a calorie budget into gram targets using the goal's
// macro split. Protein and carbs count 4 kcal/g, fat 9 kcal/g.
func Macros(goalType GoalType, dailyCalories int) MacroTargets {
	adj, ok := goalAdjustments[goalType]
	if !ok {
		adj = goalAdjustments[Maintenance]
	}
	cal := float64(dailyCalories)
	return MacroTargets{
		ProteinsG: cal * adj.ProteinRatio / 4,
		FatsG:     cal * adj.FatRatio / 9,
		CarbsG:    cal * adj.CarbRatio / 4,
	}
}
