// Package payment issues invoices and settles successful charges.
//
// Two invoice families exist: recurring pro subscriptions billed in RUB
// through an external provider, and one-off products billed in Telegram
// Stars (XTR). Both carry an opaque payload string that survives the
// round trip through the provider and identifies the purchase on
// settlement.
//
// Settlement is idempotent. A Deduper keyed by the provider charge ID
// absorbs webhook redeliveries, and a unique index on the receipts table
// backs it up. Activation effects (pro upgrade, bonus units, temporary
// multi-dish unlock) are applied through the Activator interface so the
// package stays decoupled from the subscription ledger.
package payment
