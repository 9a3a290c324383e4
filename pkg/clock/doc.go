// Package clock provides the pure calendar arithmetic used by the
// subscription ledger: UTC day and month rollover checks, trial and
// billing period lengths, and expiry evaluation.
//
// All functions are stateless and take the current instant as an
// argument, which keeps every caller testable with fixed times.
package clock
