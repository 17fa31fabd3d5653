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

// HandoffStore implements the HandoffRepository interface using BoltDB.
type HandoffStore struct {
	db *bolt.DB
}

// NewHandoffStore creates a new BoltDB-backed HandoffStore.
func NewHandoffStore(db *DB) *HandoffStore {
	return &HandoffStore{db: db.Bolt()}
}

// Create adds a new handoff to the store.
func (s *HandoffStore) Create(_ context.Context, h *entity.Handoff) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHandoffStore)
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("failed to marshal handoff: %w", err)
		}
		return b.Put([]byte(h.ID), data)
	})
}

// Get retrieves a handoff by its ID.
func (s *HandoffStore) Get(_ context.Context, id string) (*entity.Handoff, error) {
	var h entity.Handoff
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHandoffStore)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", errno.ErrHandoffNotFound, id)
		}
		return json.Unmarshal(data, &h)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Update replaces an existing handoff in the store.
func (s *HandoffStore) Update(_ context.Context, h *entity.Handoff) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHandoffStore)
		if b.Get([]byte(h.ID)) == nil {
			return fmt.Errorf("%w: %s", errno.ErrHandoffNotFound, h.ID)
		}
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("failed to marshal handoff: %w", err)
		}
		return b.Put([]byte(h.ID), data)
	})
}

// List returns all handoffs, newest first.
func (s *HandoffStore) List(_ context.Context) ([]*entity.Handoff, error) {
	var hs []*entity.Handoff
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHandoffStore)
		return b.ForEach(func(k, v []byte) error {
			var h entity.Handoff
			if err := json.Unmarshal(v, &h); err != nil {
				return fmt.Errorf("failed to unmarshal handoff: %w", err)
			}
			hs = append(hs, &h)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list handoffs: %w", err)
	}
	sort.Slice(hs, func(i, j int) bool {
		return hs[i].CreatedAt.After(hs[j].CreatedAt)
	})
	return hs, nil
}
