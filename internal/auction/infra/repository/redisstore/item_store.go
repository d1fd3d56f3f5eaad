package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
)

const (
	itemKeyPrefix = "item:"
	catalogKey    = "items"
)

// errRevisionMoved aborts a Watch callback when the stored revision no longer
// matches the caller's snapshot.
var errRevisionMoved = errors.New("revision moved")

// ItemStore implements domain.ItemStore on redis. Each item is one hash under
// item:<id>; CompareAndSwap is WATCH + revision check + MULTI/EXEC, so a
// concurrent write between the read and the EXEC fails the transaction instead
// of losing an update.
type ItemStore struct {
	client *redis.Client
}

// NewItemStore connects to redis and verifies the connection.
func NewItemStore(ctx context.Context, addr, password string, db int) (*ItemStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis item store: ping failed: %w", err)
	}
	return &ItemStore{client: client}, nil
}

// Get implements domain.ItemStore.
func (s *ItemStore) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	fields, err := s.client.HGetAll(ctx, itemKeyPrefix+itemID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis item store: get %s: %w", itemID, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrItemNotFound
	}
	return itemFromHash(itemID, fields)
}

// List implements domain.ItemStore.
func (s *ItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	ids, err := s.client.SMembers(ctx, catalogKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis item store: list ids: %w", err)
	}

	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CompareAndSwap implements domain.ItemStore. The WATCH covers the item key, so
// any write committed between the revision read and the EXEC turns the
// transaction into redis.TxFailedErr, reported as a plain lost race.
func (s *ItemStore) CompareAndSwap(ctx context.Context, itemID string, expectedRevision uint64, amount int64, bidder string) (bool, error) {
	key := itemKeyPrefix + itemID

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, "revision").Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrItemNotFound
		}
		if err != nil {
			return err
		}
		revision, err := strconv.ParseUint(current, 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt revision for %s: %w", itemID, err)
		}
		if revision != expectedRevision {
			return errRevisionMoved
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"current_bid", strconv.FormatInt(amount, 10),
				"leader", bidder,
				"revision", strconv.FormatUint(expectedRevision+1, 10),
			)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errRevisionMoved), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case errors.Is(err, domain.ErrItemNotFound):
		return false, domain.ErrItemNotFound
	default:
		return false, fmt.Errorf("redis item store: cas %s: %w", itemID, err)
	}
}

// Put implements domain.ItemStore. Seeding only, runs before the gateway
// accepts traffic.
func (s *ItemStore) Put(ctx context.Context, item *domain.Item) error {
	revision := item.Revision
	if revision == 0 {
		revision = 1
	}
	key := itemKeyPrefix + item.ID

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"title", item.Title,
		"description", item.Description,
		"current_bid", strconv.FormatInt(item.CurrentBid, 10),
		"leader", item.Leader,
		"close_time", strconv.FormatInt(item.CloseTime.UnixMilli(), 10),
		"revision", strconv.FormatUint(revision, 10),
	)
	pipe.SAdd(ctx, catalogKey, item.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis item store: put %s: %w", item.ID, err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *ItemStore) Close() error {
	return s.client.Close()
}

func itemFromHash(id string, fields map[string]string) (*domain.Item, error) {
	currentBid, err := strconv.ParseInt(fields["current_bid"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt current_bid for %s: %w", id, err)
	}
	revision, err := strconv.ParseUint(fields["revision"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt revision for %s: %w", id, err)
	}
	closeMillis, err := strconv.ParseInt(fields["close_time"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt close_time for %s: %w", id, err)
	}

	return &domain.Item{
		ID:          id,
		Title:       fields["title"],
		Description: fields["description"],
		CurrentBid:  currentBid,
		Leader:      fields["leader"],
		CloseTime:   time.UnixMilli(closeMillis),
		Revision:    revision,
	}, nil
}
