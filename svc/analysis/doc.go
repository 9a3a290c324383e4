// Package analysis stores food analysis results and aggregates them
// into daily and period nutrition totals.
//
// Each saved entry carries the parsed macros of one photo analysis,
// pinned to a UTC calendar day. The most recent analysis additionally
// lives in a short-lived draft cache so the user can tweak the weight
// or dish name before the numbers settle into history.
package analysis
