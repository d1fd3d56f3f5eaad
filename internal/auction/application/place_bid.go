package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
	"github.com/cristianortiz/liveAuction/internal/shared/logger"
)

var log = logger.GetLogger()

// PlaceBidUseCase runs the bid-acceptance protocol: read a snapshot, validate
// against it, then commit with a compare-and-swap on the snapshot's revision.
// A lost race comes back as Outbid and is never retried here; only the caller
// knows whether its amount still makes sense against the new price.
type PlaceBidUseCase struct {
	store       domain.ItemStore
	broadcaster domain.Broadcaster
}

// NewPlaceBidUseCase wires the protocol to a store and a broadcaster.
func NewPlaceBidUseCase(store domain.ItemStore, broadcaster domain.Broadcaster) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		store:       store,
		broadcaster: broadcaster,
	}
}

// Execute decides one bid. Accepted outcomes are handed to the broadcaster
// exactly once, before returning; rejections carry the reason for the
// submitting session alone.
func (uc *PlaceBidUseCase) Execute(ctx context.Context, req domain.BidRequest) domain.Outcome {
	item, err := uc.store.Get(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			log.Warn("Bid rejected: item not found",
				zap.String("itemID", req.ItemID),
				zap.String("bidderID", req.BidderID),
			)
			return domain.Rejected(req.ItemID, domain.ReasonItemNotFound)
		}
		log.Error("Bid rejected: store get failed",
			zap.String("itemID", req.ItemID),
			zap.String("bidderID", req.BidderID),
			zap.Error(err),
		)
		return domain.Rejected(req.ItemID, domain.ReasonStoreUnavailable)
	}

	if err := domain.Validate(req.Amount, item.CurrentBid); err != nil {
		log.Warn("Bid rejected: amount too low",
			zap.String("itemID", req.ItemID),
			zap.String("bidderID", req.BidderID),
			zap.Int64("amount", req.Amount),
			zap.Int64("currentBid", item.CurrentBid),
		)
		return domain.Rejected(req.ItemID, domain.ReasonTooLow)
	}

	ok, err := uc.store.CompareAndSwap(ctx, req.ItemID, item.Revision, req.Amount, req.BidderID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return domain.Rejected(req.ItemID, domain.ReasonItemNotFound)
		}
		log.Error("Bid rejected: store swap failed",
			zap.String("itemID", req.ItemID),
			zap.String("bidderID", req.BidderID),
			zap.Error(err),
		)
		return domain.Rejected(req.ItemID, domain.ReasonStoreUnavailable)
	}
	if !ok {
		// Another bid committed between our snapshot and the swap.
		log.Info("Bid rejected: outbid",
			zap.String("itemID", req.ItemID),
			zap.String("bidderID", req.BidderID),
			zap.Int64("amount", req.Amount),
			zap.Uint64("snapshotRevision", item.Revision),
		)
		return domain.Rejected(req.ItemID, domain.ReasonOutbid)
	}

	outcome := domain.Outcome{
		Accepted: true,
		ItemID:   req.ItemID,
		NewBid:   req.Amount,
		BidderID: req.BidderID,
		Revision: item.Revision + 1,
	}

	log.Info("Bid accepted",
		zap.String("itemID", outcome.ItemID),
		zap.String("bidderID", outcome.BidderID),
		zap.Int64("newBid", outcome.NewBid),
		zap.Uint64("revision", outcome.Revision),
	)

	uc.broadcaster.Publish(domain.BidUpdate{
		ItemID:   outcome.ItemID,
		NewBid:   outcome.NewBid,
		BidderID: outcome.BidderID,
		Revision: outcome.Revision,
	})

	return outcome
}
