package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
)

// DefaultCatalog is the seed inventory. Unconditional writes are allowed here
// only because seeding completes before the gateway accepts any connection.
func DefaultCatalog(now time.Time) []*domain.Item {
	return []*domain.Item{
		{
			ID:          "1",
			Title:       "Vintage Rolex",
			Description: "1968 Oyster Perpetual, original band",
			CurrentBid:  1000,
			Leader:      domain.NoBidder,
			CloseTime:   now.Add(time.Hour),
		},
		{
			ID:          "2",
			Title:       "Charizard Card",
			Description: "Base set holographic, near mint",
			CurrentBid:  500,
			Leader:      domain.NoBidder,
			CloseTime:   now.Add(2 * time.Hour),
		},
	}
}

// SeedCatalog writes the initial items into the store.
func SeedCatalog(ctx context.Context, store domain.ItemStore, items []*domain.Item) error {
	for _, item := range items {
		if err := store.Put(ctx, item); err != nil {
			return fmt.Errorf("seed catalog: item %s: %w", item.ID, err)
		}
		log.Info("Seeded auction item",
			zap.String("itemID", item.ID),
			zap.String("title", item.Title),
			zap.Int64("startingBid", item.CurrentBid),
			zap.Time("closeTime", item.CloseTime),
		)
	}
	return nil
}
