package domain

import "context"

// ItemStore holds the authoritative item state. Get followed by CompareAndSwap
// must be safe from arbitrarily many concurrent callers without external
// locking; the swap itself is the per-item serialization point.
type ItemStore interface {
	// Get returns a snapshot of the item, ErrItemNotFound for unknown ids.
	Get(ctx context.Context, itemID string) (*Item, error)
	// List returns a snapshot of every item, for the read-only listing.
	List(ctx context.Context) ([]*Item, error)
	// CompareAndSwap applies (amount, bidder) and bumps the revision by one,
	// atomically, iff the stored revision still equals expectedRevision.
	// Returns false with the state untouched when the revision moved. This is
	// the sole mutation path once traffic is flowing.
	CompareAndSwap(ctx context.Context, itemID string, expectedRevision uint64, amount int64, bidder string) (bool, error)
	// Put unconditionally writes an item. Seeding only, before any bid traffic.
	Put(ctx context.Context, item *Item) error
}

// Broadcaster fans an accepted bid out to every connected observer. At-most-once,
// best effort; per-item delivery order must follow Revision.
type Broadcaster interface {
	Publish(update BidUpdate)
}
