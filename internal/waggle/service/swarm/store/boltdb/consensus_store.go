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

// ConsensusStore implements the ConsensusRepository interface using BoltDB.
type ConsensusStore struct {
	db *bolt.DB
}

// NewConsensusStore creates a new BoltDB-backed ConsensusStore.
func NewConsensusStore(db *DB) *ConsensusStore {
	return &ConsensusStore{db: db.Bolt()}
}

// Create adds a new consensus request to the store.
func (s *ConsensusStore) Create(_ context.Context, c *entity.Consensus) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketConsensusStore)
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal consensus: %w", err)
		}
		return b.Put([]byte(c.ID), data)
	})
}

// Get retrieves a consensus request by its ID.
func (s *ConsensusStore) Get(_ context.Context, id string) (*entity.Consensus, error) {
	var c entity.Consensus
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketConsensusStore)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", errno.ErrConsensusNotFound, id)
		}
		return json.Unmarshal(data, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update replaces an existing consensus request in the store.
func (s *ConsensusStore) Update(_ context.Context, c *entity.Consensus) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketConsensusStore)
		if b.Get([]byte(c.ID)) == nil {
			return fmt.Errorf("%w: %s", errno.ErrConsensusNotFound, c.ID)
		}
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal consensus: %w", err)
		}
		return b.Put([]byte(c.ID), data)
	})
}

// List returns all consensus requests, newest first.
func (s *ConsensusStore) List(_ context.Context) ([]*entity.Consensus, error) {
	var cs []*entity.Consensus
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketConsensusStore)
		return b.ForEach(func(k, v []byte) error {
			var c entity.Consensus
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("failed to unmarshal consensus: %w", err)
			}
			cs = append(cs, &c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list consensus requests: %w", err)
	}
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
	return cs, nil
}
