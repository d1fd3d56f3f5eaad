package domain

// BidRequest is one inbound bid as submitted by a client. It lives for a single
// protocol invocation and is never persisted.
type BidRequest struct {
	ItemID   string
	Amount   int64
	BidderID string
}

// RejectReason is the closed set of reasons a bid can fail. The string values go
// on the wire as-is.
type RejectReason string

const (
	ReasonItemNotFound     RejectReason = "ItemNotFound"
	ReasonTooLow           RejectReason = "TooLow"
	ReasonOutbid           RejectReason = "Outbid"
	ReasonBadRequest       RejectReason = "BadRequest"
	ReasonStoreUnavailable RejectReason = "StoreUnavailable"
)

// Outcome is the result of one PlaceBid invocation. Accepted outcomes are
// broadcast to every observer; rejected outcomes go only to the submitter.
type Outcome struct {
	Accepted bool
	ItemID   string
	NewBid   int64
	BidderID string
	// Revision the store committed for an accepted bid. Broadcast delivery for
	// the same item is ordered by it.
	Revision uint64
	Reason   RejectReason
}

// Rejected builds a rejection outcome for the given reason.
func Rejected(itemID string, reason RejectReason) Outcome {
	return Outcome{ItemID: itemID, Reason: reason}
}

// BidUpdate is the fan-out payload for one accepted bid.
type BidUpdate struct {
	ItemID   string
	NewBid   int64
	BidderID string
	Revision uint64
}
