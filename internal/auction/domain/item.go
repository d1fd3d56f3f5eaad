package domain

import "time"

// NoBidder is the leader sentinel for an item that has not received a bid yet,
// used as the seeded leader value.
const NoBidder = "System"

// Item is the authoritative state of one auction item. Title and Description are
// immutable after seeding; CurrentBid and Leader change together, only through
// ItemStore.CompareAndSwap, and only to a strictly greater amount. Revision bumps
// by one on every successful swap and never otherwise.
type Item struct {
	ID          string
	Title       string
	Description string
	CurrentBid  int64
	Leader      string
	CloseTime   time.Time
	Revision    uint64
}
