package boltdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/boltdb/bolt"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/pkg/utils/json"
)

// BroadcastStore implements the BroadcastRepository interface using BoltDB.
type BroadcastStore struct {
	db *bolt.DB
}

// NewBroadcastStore creates a new BoltDB-backed BroadcastStore.
func NewBroadcastStore(db *DB) *BroadcastStore {
	return &BroadcastStore{db: db.Bolt()}
}

// Create adds a new broadcast to the store.
func (s *BroadcastStore) Create(_ context.Context, bc *entity.Broadcast) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBroadcastStore)
		data, err := json.Marshal(bc)
		if err != nil {
			return fmt.Errorf("failed to marshal broadcast: %w", err)
		}
		return b.Put([]byte(bc.ID), data)
	})
}

// Get retrieves a broadcast by its ID.
func (s *BroadcastStore) Get(_ context.Context, id string) (*entity.Broadcast, error) {
	var bc entity.Broadcast
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBroadcastStore)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", errno.ErrBroadcastNotFound, id)
		}
		return json.Unmarshal(data, &bc)
	})
	if err != nil {
		return nil, err
	}
	return &bc, nil
}

// Update replaces an existing broadcast in the store.
func (s *BroadcastStore) Update(_ context.Context, bc *entity.Broadcast) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBroadcastStore)
		if b.Get([]byte(bc.ID)) == nil {
			return fmt.Errorf("%w: %s", errno.ErrBroadcastNotFound, bc.ID)
		}
		data, err := json.Marshal(bc)
		if err != nil {
			return fmt.Errorf("failed to marshal broadcast: %w", err)
		}
		return b.Put([]byte(bc.ID), data)
	})
}

// List returns broadcasts matching the filter, newest first.
func (s *BroadcastStore) List(_ context.Context, filter entity.BroadcastFilter) ([]*entity.Broadcast, error) {
	var bcs []*entity.Broadcast
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBroadcastStore)
		return b.ForEach(func(k, v []byte) error {
			var bc entity.Broadcast
			if err := json.Unmarshal(v, &bc); err != nil {
				return fmt.Errorf("failed to unmarshal broadcast: %w", err)
			}
			if filter.Domain != "" && bc.Pattern.Domain != filter.Domain {
				return nil
			}
			if bc.Pattern.Quality < filter.MinQuality {
				return nil
			}
			bcs = append(bcs, &bc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcasts: %w", err)
	}
	sort.Slice(bcs, func(i, j int) bool {
		return bcs[i].CreatedAt.After(bcs[j].CreatedAt)
	})
	if filter.Limit > 0 && len(bcs) > filter.Limit {
		bcs = bcs[:filter.Limit]
	}
	return bcs, nil
}
