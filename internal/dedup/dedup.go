// Package dedup defines the update deduplication contract. Stores remember
// recently seen update identifiers for a bounded lifetime so redelivered
// webhook payloads are dropped instead of republished.
//
// The check-then-mark sequence is intentionally not atomic: concurrent
// deliveries of the same update may both pass Seen before either marks it.
// Deduplication here is best-effort; exactly-once handling belongs to the
// bus consumer.
package dedup

import "context"

// Store tracks seen update identifiers.
type Store interface {
	// Seen reports whether id was marked within the store's lifetime window.
	Seen(ctx context.Context, id string) (bool, error)

	// MarkSeen records id as seen now.
	MarkSeen(ctx context.Context, id string) error
}
