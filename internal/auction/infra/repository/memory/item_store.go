package memory

import (
	"context"
	"sync"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
)

// ItemStore is the in-process implementation of domain.ItemStore. A single
// mutex guards the map; the revision check inside CompareAndSwap runs under
// that lock, which makes the swap linearizable across all items.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

// NewItemStore creates an empty in-memory store.
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[string]*domain.Item)}
}

// Get implements domain.ItemStore. The returned item is a copy, callers can
// never observe a half-applied update through it.
func (s *ItemStore) Get(_ context.Context, itemID string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	snapshot := *item
	return &snapshot, nil
}

// List implements domain.ItemStore.
func (s *ItemStore) List(_ context.Context) ([]*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*domain.Item, 0, len(s.items))
	for _, item := range s.items {
		snapshot := *item
		items = append(items, &snapshot)
	}
	return items, nil
}

// CompareAndSwap implements domain.ItemStore.
func (s *ItemStore) CompareAndSwap(_ context.Context, itemID string, expectedRevision uint64, amount int64, bidder string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return false, domain.ErrItemNotFound
	}
	if item.Revision != expectedRevision {
		return false, nil
	}
	item.CurrentBid = amount
	item.Leader = bidder
	item.Revision++
	return true, nil
}

// Put implements domain.ItemStore. Seeding only.
func (s *ItemStore) Put(_ context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *item
	if stored.Revision == 0 {
		stored.Revision = 1
	}
	s.items[stored.ID] = &stored
	return nil
}
