package application

import (
	"context"
	"sort"
	"time"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
)

// ItemDTO is the listing projection of one item, served over HTTP and pushed as
// the initial state on socket connect.
type ItemDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CurrentBid  int64     `json:"currentBid"`
	Leader      string    `json:"leader"`
	CloseTime   time.Time `json:"closeTime"`
}

// ListItemsUseCase projects the item store into the read-only catalog view. No
// protocol logic, plain snapshot.
type ListItemsUseCase struct {
	store domain.ItemStore
}

// NewListItemsUseCase creates the listing use case.
func NewListItemsUseCase(store domain.ItemStore) *ListItemsUseCase {
	return &ListItemsUseCase{store: store}
}

func (uc *ListItemsUseCase) Execute(ctx context.Context) ([]ItemDTO, error) {
	items, err := uc.store.List(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ItemDTO{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			CurrentBid:  item.CurrentBid,
			Leader:      item.Leader,
			CloseTime:   item.CloseTime,
		})
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].ID < dtos[j].ID })
	return dtos, nil
}
