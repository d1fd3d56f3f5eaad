package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
)

// ItemStore implements domain.ItemStore on postgres. The compare-and-swap is a
// single conditional UPDATE guarded by the revision column; the row lock makes
// it linearizable per item, and a failed or timed-out statement leaves the row
// untouched.
type ItemStore struct {
	pool *pgxpool.Pool
}

// NewItemStore creates a postgres-backed item store on an existing pool.
func NewItemStore(pool *pgxpool.Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

// Get implements domain.ItemStore.
func (s *ItemStore) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	query := `
        SELECT id, title, description, current_bid, leader, close_time, revision
        FROM items
        WHERE id = $1
    `
	item := &domain.Item{}
	err := s.pool.QueryRow(ctx, query, itemID).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.CurrentBid,
		&item.Leader,
		&item.CloseTime,
		&item.Revision,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("postgres item store: get %s: %w", itemID, err)
	}
	return item, nil
}

// List implements domain.ItemStore.
func (s *ItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	query := `
        SELECT id, title, description, current_bid, leader, close_time, revision
        FROM items
        ORDER BY id
    `
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres item store: list: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.CurrentBid,
			&item.Leader,
			&item.CloseTime,
			&item.Revision,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres item store: scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres item store: rows: %w", err)
	}
	return items, nil
}

// CompareAndSwap implements domain.ItemStore. RowsAffected is the verdict: zero
// means the revision moved under us (or the row vanished) and the bid lost.
func (s *ItemStore) CompareAndSwap(ctx context.Context, itemID string, expectedRevision uint64, amount int64, bidder string) (bool, error) {
	query := `
        UPDATE items
        SET current_bid = $3, leader = $4, revision = revision + 1
        WHERE id = $1 AND revision = $2
    `
	tag, err := s.pool.Exec(ctx, query, itemID, expectedRevision, amount, bidder)
	if err != nil {
		return false, fmt.Errorf("postgres item store: cas %s: %w", itemID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Put implements domain.ItemStore. Upsert for seeding, before traffic starts.
func (s *ItemStore) Put(ctx context.Context, item *domain.Item) error {
	revision := item.Revision
	if revision == 0 {
		revision = 1
	}
	query := `
        INSERT INTO items (id, title, description, current_bid, leader, close_time, revision)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE
        SET
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            current_bid = EXCLUDED.current_bid,
            leader = EXCLUDED.leader,
            close_time = EXCLUDED.close_time,
            revision = EXCLUDED.revision
    `
	_, err := s.pool.Exec(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.CurrentBid,
		item.Leader,
		item.CloseTime,
		revision,
	)
	if err != nil {
		return fmt.Errorf("postgres item store: put %s: %w", item.ID, err)
	}
	return nil
}
