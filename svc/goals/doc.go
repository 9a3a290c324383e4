// Package goals manages personal nutrition goals.
//
// A goal pairs a target (weight loss, muscle gain, and so on) with the
// user's body metrics and derives a daily calorie budget from the
// Mifflin-St Jeor equation. The budget feeds rule-based recommendations
// that compare a day's consumed macros against the goal's split.
package goals
