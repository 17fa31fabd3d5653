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

// AgentStore implements the AgentRepository interface using BoltDB.
type AgentStore struct {
	db *bolt.DB
}

// NewAgentStore creates a new BoltDB-backed AgentStore.
func NewAgentStore(db *DB) *AgentStore {
	return &AgentStore{db: db.Bolt()}
}

// Upsert stores or replaces an agent record.
func (s *AgentStore) Upsert(_ context.Context, agent *entity.Agent) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAgentStore)
		data, err := json.Marshal(agent)
		if err != nil {
			return fmt.Errorf("failed to marshal agent: %w", err)
		}
		return b.Put([]byte(agent.ID), data)
	})
}

// Get retrieves an agent by its ID.
func (s *AgentStore) Get(_ context.Context, id string) (*entity.Agent, error) {
	var agent entity.Agent
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAgentStore)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", errno.ErrAgentNotFound, id)
		}
		return json.Unmarshal(data, &agent)
	})
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// List returns all agent records, sorted by registration time.
func (s *AgentStore) List(_ context.Context) ([]*entity.Agent, error) {
	var agents []*entity.Agent
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAgentStore)
		return b.ForEach(func(k, v []byte) error {
			var agent entity.Agent
			if err := json.Unmarshal(v, &agent); err != nil {
				return fmt.Errorf("failed to unmarshal agent: %w", err)
			}
			agents = append(agents, &agent)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].RegisteredAt.Before(agents[j].RegisteredAt)
	})
	return agents, nil
}
