// Package metering layers quota arithmetic on the subscription ledger.
//
// CanConsume answers "may this user analyze one more photo right now"
// against the tier's daily limit, with purchased bonus units covering
// overage once the limit is spent. RecordConsumption commits a
// completed analysis as one atomic multi-field increment against the
// backing store - never a read-modify-write from this process - so two
// photos fired back-to-back by the same user both get counted.
package metering
