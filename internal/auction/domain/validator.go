package domain

// Validate decides whether a proposed amount beats the current bid. Pure
// function, no I/O: the caller re-checks the decision at commit time via the
// store's compare-and-swap, so a stale currentBid here can only cause a lost
// race, never a lost update.
//
// Policy: strictly greater wins. No minimum increment, equal amounts lose.
func Validate(proposedAmount, currentBid int64) error {
	if proposedAmount <= currentBid {
		return ErrBidTooLow
	}
	return nil
}
