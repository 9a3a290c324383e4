package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry is one stored food analysis.
type Entry struct {
	ID        bson.ObjectID  `bson:"_id,omitempty"`
	UserID    int64          `bson:"user_id"`
	Date      string         `bson:"date"` // calendar day, "2006-01-02" in UTC
	Timestamp time.Time      `bson:"timestamp"`
	DishName  string         `bson:"dish_name"`
	WeightG   int            `bson:"weight_g,omitempty"`
	Calories  float64        `bson:"calories"`
	ProteinsG float64        `bson:"proteins_g"`
	FatsG     float64        `bson:"fats_g"`
	CarbsG    float64        `bson:"carbs_g"`
	Vitamins  map[string]int `bson:"vitamins,omitempty"` // percent of daily value
	RawText   string         `bson:"raw_text,omitempty"`
	PhotoKey  string         `bson:"photo_key,omitempty"`
}

// Totals aggregates nutrition over a set of entries. Vitamins keep the
// maximum percentage seen, macros sum.
type Totals struct {
	Calories  float64
	ProteinsG float64
	FatsG     float64
	CarbsG    float64
	Vitamins  map[string]int
}

// Aggregate sums macros across entries and max-merges vitamin coverage.
func Aggregate(entries []Entry) Totals {
	total := Totals{Vitamins: make(map[string]int)}
	for _, e := range entries {
		total.Calories += e.Calories
		total.ProteinsG += e.ProteinsG
		total.FatsG += e.FatsG
		total.CarbsG += e.CarbsG
		for vitamin, pct := range e.Vitamins {
			if pct > total.Vitamins[vitamin] {
				total.Vitamins[vitamin] = pct
			}
		}
	}
	return total
}

var (
	titleCaser = cases.Title(language.English)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// NormalizeDishName trims, collapses whitespace and title-cases a dish
// name so "  grilled  chicken " and "Grilled Chicken" store identically.
func NormalizeDishName(name string) string {
	name = spaceRun.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(name))
}

var (
	dishLine     = regexp.MustCompile(`(?i)^dish:\s*(.+)$`)
	caloriesLine = regexp.MustCompile(`(?i)calories:\s*(\d+(?:\.\d+)?)`)
	proteinsLine = regexp.MustCompile(`(?i)proteins?:\s*(\d+(?:\.\d+)?)`)
	fatsLine     = regexp.MustCompile(`(?i)fats?:\s*(\d+(?:\.\d+)?)`)
	carbsLine    = regexp.MustCompile(`(?i)carbs?:\s*(\d+(?:\.\d+)?)`)
	vitaminLine  = regexp.MustCompile(`^-\s*([^:]+):\s*(\d+)%`)
)

// ParseDishName extracts and normalizes the dish name from a plain-text
// model response. Empty when the response has no Dish line.
func ParseDishName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := dishLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return NormalizeDishName(m[1])
		}
	}
	return ""
}

// ParseNutrition extracts macro and vitamin figures from a plain-text
// model response. Used as a fallback when the model ignores the
// structured output instructions. Missing figures stay zero.
func ParseNutrition(text string) (calories, proteins, fats, carbs float64, vitamins map[string]int) {
	vitamins = make(map[string]int)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case caloriesLine.MatchString(line):
			calories = parseFloat(caloriesLine.FindStringSubmatch(line)[1])
		case proteinsLine.MatchString(line):
			proteins = parseFloat(proteinsLine.FindStringSubmatch(line)[1])
		case fatsLine.MatchString(line):
			fats = parseFloat(fatsLine.FindStringSubmatch(line)[1])
		case carbsLine.MatchString(line):
			carbs = parseFloat(carbsLine.FindStringSubmatch(line)[1])
		default:
			if m := vitaminLine.FindStringSubmatch(line); m != nil {
				pct, err := strconv.Atoi(m[2])
				if err == nil {
					vitamins[strings.TrimSpace(m[1])] = pct
				}
			}
		}
	}
	return calories, proteins, fats, carbs, vitamins
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
