package application

import (
	"context"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
)

// AuctionService is the application interface of the auction module, the
// surface the infra layer (websocket gateway, HTTP handlers) talks to.
type AuctionService interface {
	// PlaceBid runs the acceptance protocol for one bid request.
	PlaceBid(ctx context.Context, req domain.BidRequest) domain.Outcome
	// ListItems returns the read-only catalog projection.
	ListItems(ctx context.Context) ([]ItemDTO, error)
}

type auctionService struct {
	placeBidUC  *PlaceBidUseCase
	listItemsUC *ListItemsUseCase
}

func NewAuctionService(placeBidUC *PlaceBidUseCase, listItemsUC *ListItemsUseCase) AuctionService {
	return &auctionService{
		placeBidUC:  placeBidUC,
		listItemsUC: listItemsUC,
	}
}

// PlaceBid implements AuctionService.
func (as *auctionService) PlaceBid(ctx context.Context, req domain.BidRequest) domain.Outcome {
	return as.placeBidUC.Execute(ctx, req)
}

// ListItems implements AuctionService.
func (as *auctionService) ListItems(ctx context.Context) ([]ItemDTO, error) {
	return as.listItemsUC.Execute(ctx)
}
