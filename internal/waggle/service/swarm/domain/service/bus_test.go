package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/store/inmemory"
)

func newTestBus() MessageBus {
	return NewMessageBus(inmemory.NewMessageStore(), inmemory.NewAgentStore())
}

func TestBusSendAndList(t *testing.T) {
	bus := newTestBus()
	ctx := context.Background()

	msg, err := bus.Send(ctx, "worker-1", "worker-2", "hello", entity.MessageGeneric, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Read)

	msgs, err := bus.GetMessages(ctx, repo.MessageFilter{Agent: "worker-2"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)

	// Not visible to an unrelated agent.
	msgs, err = bus.GetMessages(ctx, repo.MessageFilter{Agent: "worker-3"})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestBusSendValidation(t *testing.T) {
	bus := newTestBus()
	ctx := context.Background()

	_, err := bus.Send(ctx, "", "worker-2", "x", entity.MessageGeneric, 0)
	assert.ErrorIs(t, err, errno.ErrEmptySender)

	_, err = bus.Send(ctx, "worker-1", "", "x", entity.MessageGeneric, 0)
	assert.ErrorIs(t, err, errno.ErrEmptyRecipient)
}

func TestBusBroadcastVisibleToEveryone(t *testing.T) {
	bus := newTestBus()
	ctx := context.Background()

	msg, err := bus.Broadcast(ctx, "worker-1", "swarm-wide notice")
	require.NoError(t, err)
	assert.True(t, msg.Broadcast())

	for _, agent := range []string{"worker-2", "worker-3"} {
		msgs, err := bus.GetMessages(ctx, repo.MessageFilter{Agent: agent})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
	}
}

func TestBusListNewestFirstWithLimit(t *testing.T) {
	bus := newTestBus().(*busImpl)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		tick := base.Add(time.Duration(i) * time.Second)
		bus.now = func() time.Time { return tick }
		_, err := bus.Send(ctx, "worker-1", "worker-2", "msg", entity.MessageGeneric, 0)
		require.NoError(t, err)
	}

	msgs, err := bus.GetMessages(ctx, repo.MessageFilter{Agent: "worker-2", Limit: 3})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.True(t, msgs[0].CreatedAt.After(msgs[1].CreatedAt))
	assert.True(t, msgs[1].CreatedAt.After(msgs[2].CreatedAt))
}

func TestBusUnreadFilterAndMarkRead(t *testing.T) {
	bus := newTestBus()
	ctx := context.Background()

	msg, err := bus.Send(ctx, "worker-1", "worker-2", "check me", entity.MessageGeneric, 0)
	require.NoError(t, err)

	require.NoError(t, bus.MarkRead(ctx, msg.ID))
	msgs, err := bus.GetMessages(ctx, repo.MessageFilter{Agent: "worker-2", UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, msgs)

	assert.ErrorIs(t, bus.MarkRead(ctx, "no-such-id"), errno.ErrMessageNotFound)
}

func TestBusSenderAutoRegistered(t *testing.T) {
	bus := newTestBus()
	ctx := context.Background()

	_, err := bus.Send(ctx, "worker-1", "worker-2", "hi", entity.MessageGeneric, 0)
	require.NoError(t, err)

	agent, err := bus.GetAgent(ctx, "worker-1")
	require.NoError(t, err)
	assert.True(t, agent.Active())
	assert.False(t, agent.LastSeen.IsZero())
}

func TestBusRegisterAgentRefreshesExisting(t *testing.T) {
	bus := newTestBus()
	ctx := context.Background()

	first, err := bus.RegisterAgent(ctx, "worker-1", "builder")
	require.NoError(t, err)

	first.Status = entity.AgentInactive
	require.NoError(t, bus.UpdateAgent(ctx, first))

	again, err := bus.RegisterAgent(ctx, "worker-1", "")
	require.NoError(t, err)
	assert.Equal(t, entity.AgentActive, again.Status)
	assert.Equal(t, "builder", again.Name, "re-registration keeps the existing name")
	assert.Equal(t, first.RegisteredAt, again.RegisteredAt)

	agents, err := bus.GetAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, 1)
}
