package subscription

import "context"

// Store is the document-store contract the ledger is built on. The
// backing store must provide per-document atomicity for Increment;
// correctness under concurrent requests for the same user relies on it
// instead of read-modify-write from the caller's process.
type Store interface {
	// Get reads the record by user ID. Returns ErrNotFound when no
	// document exists.
	Get(ctx context.Context, userID int64) (Record, error)

	// Ensure creates the record if it does not exist yet and leaves an
	// existing document untouched (merge-create).
	Ensure(ctx context.Context, rec Record) error

	// Set applies plain field updates to the record. Field names are the
	// document field names, values replace whatever is stored.
	Set(ctx context.Context, userID int64, fields map[string]any) error

	// Increment atomically adds the given deltas to numeric fields in a
	// single store operation.
	Increment(ctx context.Context, userID int64, deltas map[string]int64) error
}
