// Package entitlement holds the static policy table (tier to limits and
// feature flags) and the Gate, the single decision point handlers call
// before any quota-consuming or feature-gated action.
//
// The table is a total function over the tier enum: every tier resolves
// to a plan and unknown tiers fall back to Lite, so there is no runtime
// dictionary lookup with a silent default. An optional YAML file can
// replace the built-in table at process start; it is validated for
// totality and unknown feature names are rejected.
//
// Decisions fail closed. Any store failure during a check produces a
// denial with ReasonSystemError and the underlying error, never an
// implicit allow.
package entitlement
