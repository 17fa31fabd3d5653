package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
)

// MessageStore is an in-memory implementation of repo.MessageRepository.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[string]*entity.Message
}

// NewMessageStore creates a new MessageStore instance.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[string]*entity.Message),
	}
}

// Create stores a new message.
func (s *MessageStore) Create(_ context.Context, msg *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *msg
	s.messages[msg.ID] = &clone
	return nil
}

// Get returns a message by ID.
func (s *MessageStore) Get(_ context.Context, id string) (*entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, errno.ErrMessageNotFound
	}
	clone := *msg
	return &clone, nil
}

// List returns messages matching the filter, newest first.
func (s *MessageStore) List(_ context.Context, filter repo.MessageFilter) ([]*entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var msgs []*entity.Message
	for _, msg := range s.messages {
		if filter.Agent != "" && !msg.VisibleTo(filter.Agent) {
			continue
		}
		if filter.From != "" && msg.From != filter.From {
			continue
		}
		if filter.Type != "" && msg.Type != filter.Type {
			continue
		}
		if filter.UnreadOnly && msg.Read {
			continue
		}
		clone := *msg
		msgs = append(msgs, &clone)
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	if filter.Limit > 0 && len(msgs) > filter.Limit {
		msgs = msgs[:filter.Limit]
	}
	return msgs, nil
}

// MarkRead flags a message as read.
func (s *MessageStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return errno.ErrMessageNotFound
	}
	msg.Read = true
	return nil
}
