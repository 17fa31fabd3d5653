package boltdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/boltdb/bolt"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/pkg/utils/json"
)

// MessageStore implements the MessageRepository interface using BoltDB.
type MessageStore struct {
	db *bolt.DB
}

// NewMessageStore creates a new BoltDB-backed MessageStore.
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db.Bolt()}
}

// Create adds a new message to the store.
func (s *MessageStore) Create(_ context.Context, msg *entity.Message) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessageStore)
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		return b.Put([]byte(msg.ID), data)
	})
}

// Get retrieves a message by its ID.
func (s *MessageStore) Get(_ context.Context, id string) (*entity.Message, error) {
	var msg entity.Message
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessageStore)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", errno.ErrMessageNotFound, id)
		}
		return json.Unmarshal(data, &msg)
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns messages matching the filter, newest first.
func (s *MessageStore) List(_ context.Context, filter repo.MessageFilter) ([]*entity.Message, error) {
	var msgs []*entity.Message
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessageStore)
		return b.ForEach(func(k, v []byte) error {
			var msg entity.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal message: %w", err)
			}
			if !matchMessage(&msg, filter) {
				return nil
			}
			msgs = append(msgs, &msg)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
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
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessageStore)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", errno.ErrMessageNotFound, id)
		}
		var msg entity.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal message: %w", err)
		}
		if msg.Read {
			return nil
		}
		msg.Read = true
		updated, err := json.Marshal(&msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		return b.Put([]byte(id), updated)
	})
}

func matchMessage(msg *entity.Message, filter repo.MessageFilter) bool {
	if filter.Agent != "" && !msg.VisibleTo(filter.Agent) {
		return false
	}
	if filter.From != "" && msg.From != filter.From {
		return false
	}
	if filter.Type != "" && msg.Type != filter.Type {
		return false
	}
	if filter.UnreadOnly && msg.Read {
		return false
	}
	return true
}
