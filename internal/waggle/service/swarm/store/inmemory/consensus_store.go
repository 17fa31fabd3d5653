package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
)

// ConsensusStore is an in-memory implementation of repo.ConsensusRepository.
type ConsensusStore struct {
	mu       sync.RWMutex
	requests map[string]*entity.Consensus
}

// NewConsensusStore creates a new ConsensusStore instance.
func NewConsensusStore() *ConsensusStore {
	return &ConsensusStore{
		requests: make(map[string]*entity.Consensus),
	}
}

// Create stores a new consensus request.
func (s *ConsensusStore) Create(_ context.Context, c *entity.Consensus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[c.ID] = cloneConsensus(c)
	return nil
}

// Get returns a consensus request by ID.
func (s *ConsensusStore) Get(_ context.Context, id string) (*entity.Consensus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.requests[id]
	if !ok {
		return nil, errno.ErrConsensusNotFound
	}
	return cloneConsensus(c), nil
}

// Update replaces an existing consensus request.
func (s *ConsensusStore) Update(_ context.Context, c *entity.Consensus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[c.ID]; !ok {
		return errno.ErrConsensusNotFound
	}
	s.requests[c.ID] = cloneConsensus(c)
	return nil
}

// List returns all consensus requests, newest first.
func (s *ConsensusStore) List(_ context.Context) ([]*entity.Consensus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs := make([]*entity.Consensus, 0, len(s.requests))
	for _, c := range s.requests {
		cs = append(cs, cloneConsensus(c))
	}
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
	return cs, nil
}

func cloneConsensus(c *entity.Consensus) *entity.Consensus {
	clone := *c
	clone.Options = append([]string(nil), c.Options...)
	if c.Votes != nil {
		clone.Votes = make(map[string]string, len(c.Votes))
		for k, v := range c.Votes {
			clone.Votes[k] = v
		}
	}
	return &clone
}
