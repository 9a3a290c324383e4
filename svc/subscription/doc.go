// Package subscription owns the per-user subscription record and its
// state machine: tier (lite, trial, pro), status, expiry, usage
// counters, the one-way trial flag and ad-hoc bonus units.
//
// Expiry enforcement and counter resets are lazy. Every GetRecord runs
// ValidateAndRepair before returning, so an expired Pro record is
// downgraded to Lite and a stale daily counter is zeroed on the first
// read after the UTC day rolls over. Corrections are persisted at that
// moment; no background sweep exists.
//
// Tier transitions are restricted to:
//
//	lite  -> trial  (ActivateTrial, requires the trial was never used)
//	any   -> pro    (ActivatePro; renewal extends the expiry)
//	trial -> lite   (lazy expiry)
//	pro   -> lite   (lazy expiry)
//
// The Store interface is the document-store contract: read-by-key,
// merge-create, plain set, and atomic per-field increment. The Mongo
// implementation maps these to find-one, $setOnInsert upserts, $set and
// $inc; MemoryStore mirrors the same semantics for tests.
package subscription
