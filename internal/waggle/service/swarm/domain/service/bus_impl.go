package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/pkg/logger"
)

// busImpl implements the MessageBus interface.
type busImpl struct {
	messageRepo repo.MessageRepository
	agentRepo   repo.AgentRepository
	now         func() time.Time
}

func NewMessageBus(messageRepo repo.MessageRepository, agentRepo repo.AgentRepository) MessageBus {
	return &busImpl{
		messageRepo: messageRepo,
		agentRepo:   agentRepo,
		now:         time.Now,
	}
}

func (b *busImpl) Send(ctx context.Context, from, to, content string, typ entity.MessageType, priority int) (*entity.Message, error) {
	return b.SendRef(ctx, from, to, content, typ, priority, "")
}

func (b *busImpl) SendRef(ctx context.Context, from, to, content string, typ entity.MessageType, priority int, ref string) (*entity.Message, error) {
	if from == "" {
		return nil, errno.ErrEmptySender
	}
	if to == "" {
		return nil, errno.ErrEmptyRecipient
	}
	if typ == "" {
		typ = entity.MessageGeneric
	}

	msg := &entity.Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Content:   content,
		Type:      typ,
		Priority:  priority,
		Ref:       ref,
		CreatedAt: b.now(),
	}
	if err := b.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}
	if err := b.touchAgent(ctx, from); err != nil {
		logger.Warn("[Swarm] heartbeat update for %s failed: %v", from, err)
	}
	logger.Debug("[Swarm] message %s sent from %s to %s (type=%s)", msg.ID, from, to, typ)
	return msg, nil
}

func (b *busImpl) Broadcast(ctx context.Context, from, content string) (*entity.Message, error) {
	return b.Send(ctx, from, entity.BroadcastRecipient, content, entity.MessageGeneric, 0)
}

func (b *busImpl) GetMessages(ctx context.Context, filter repo.MessageFilter) ([]*entity.Message, error) {
	return b.messageRepo.List(ctx, filter)
}

func (b *busImpl) MarkRead(ctx context.Context, id string) error {
	return b.messageRepo.MarkRead(ctx, id)
}

func (b *busImpl) RegisterAgent(ctx context.Context, id, name string) (*entity.Agent, error) {
	if id == "" {
		return nil, errno.ErrEmptySender
	}
	now := b.now()
	agent, err := b.agentRepo.Get(ctx, id)
	if err != nil {
		agent = &entity.Agent{
			ID:           id,
			Name:         name,
			Status:       entity.AgentActive,
			RegisteredAt: now,
		}
		logger.Info("[Swarm] registering agent %s", id)
	}
	if name != "" {
		agent.Name = name
	}
	agent.Status = entity.AgentActive
	agent.LastSeen = now
	if err := b.agentRepo.Upsert(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to register agent %s: %w", id, err)
	}
	return agent, nil
}

func (b *busImpl) GetAgent(ctx context.Context, id string) (*entity.Agent, error) {
	return b.agentRepo.Get(ctx, id)
}

func (b *busImpl) GetAgents(ctx context.Context) ([]*entity.Agent, error) {
	return b.agentRepo.List(ctx)
}

func (b *busImpl) UpdateAgent(ctx context.Context, agent *entity.Agent) error {
	return b.agentRepo.Upsert(ctx, agent)
}

// touchAgent refreshes the sender's heartbeat, registering it on first sight.
func (b *busImpl) touchAgent(ctx context.Context, id string) error {
	agent, err := b.agentRepo.Get(ctx, id)
	if err != nil {
		_, err = b.RegisterAgent(ctx, id, "")
		return err
	}
	agent.Status = entity.AgentActive
	agent.LastSeen = b.now()
	return b.agentRepo.Upsert(ctx, agent)
}
