package goals

import (
	"context"
	"fmt"
	"strings"
)

// TextGenerator runs a free-form prompt. Satisfied by vision.Client.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ModelAdvisor produces short personalized tips through a language model.
type ModelAdvisor struct {
	gen TextGenerator
}

func NewModelAdvisor(gen TextGenerator) *ModelAdvisor {
	if gen == nil {
		panic("goals: text generator is required")
	}
	return &ModelAdvisor{gen: gen}
}

func (a *ModelAdvisor) Advise(ctx context.Context, goal Goal, day DayNutrition) (string, error) {
	prompt := fmt.Sprintf(`You are a personal nutritionist. Review the user's day and give advice.

User goal: %s
Today's intake:
- Calories: %.0f
- Proteins: %.0fg
- Fats: %.0fg
- Carbs: %.0fg

Daily calorie budget: %d

Give 1-2 concrete suggestions to move toward the goal.
Be friendly and motivating. Two sentences maximum.`,
		goal.GoalType, day.Calories, day.ProteinsG, day.FatsG, day.CarbsG, goal.DailyCalories)

	tip, err := a.gen.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tip), nil
}
