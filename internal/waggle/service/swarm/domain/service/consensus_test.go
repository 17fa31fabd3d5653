package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/store/inmemory"
)

func newTestConsensus(t *testing.T, quorum QuorumRule) (*consensusImpl, MessageBus) {
	t.Helper()
	bus := newTestBus()
	coord := NewConsensusCoordinator(bus, inmemory.NewConsensusStore(), quorum).(*consensusImpl)
	return coord, bus
}

func TestInitiateConsensusValidation(t *testing.T) {
	coord, _ := newTestConsensus(t, QuorumAllActive)
	ctx := context.Background()

	_, err := coord.InitiateConsensus(ctx, "worker-1", "", []string{"a", "b"}, time.Minute)
	assert.ErrorIs(t, err, errno.ErrEmptyQuestion)

	_, err = coord.InitiateConsensus(ctx, "worker-1", "pick one", []string{"a"}, time.Minute)
	assert.ErrorIs(t, err, errno.ErrTooFewOptions)
}

func TestVoteAndResolveByQuorum(t *testing.T) {
	coord, bus := newTestConsensus(t, QuorumAllActive)
	ctx := context.Background()

	// Two active agents: the initiator plus one voter.
	_, err := bus.RegisterAgent(ctx, "worker-1", "")
	require.NoError(t, err)
	_, err = bus.RegisterAgent(ctx, "worker-2", "")
	require.NoError(t, err)

	c, err := coord.InitiateConsensus(ctx, "worker-1", "merge strategy?", []string{"rebase", "merge"}, time.Minute)
	require.NoError(t, err)

	ok, err := coord.Vote(ctx, c.ID, "worker-1", "rebase")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := coord.GetConsensus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConsensusPending, got.Status, "one of two active agents voted")

	ok, err = coord.Vote(ctx, c.ID, "worker-2", "rebase")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = coord.GetConsensus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConsensusResolved, got.Status)
	assert.Equal(t, "rebase", got.Winner)
}

func TestVoteUnknownOption(t *testing.T) {
	coord, _ := newTestConsensus(t, QuorumAllActive)
	ctx := context.Background()

	c, err := coord.InitiateConsensus(ctx, "worker-1", "q?", []string{"a", "b"}, time.Minute)
	require.NoError(t, err)

	ok, err := coord.Vote(ctx, c.ID, "worker-2", "c")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errno.ErrUnknownOption)
}

func TestVoteUnknownRequest(t *testing.T) {
	coord, _ := newTestConsensus(t, QuorumAllActive)

	ok, err := coord.Vote(context.Background(), "missing", "worker-1", "a")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errno.ErrConsensusNotFound)
}

func TestRevoteOverwrites(t *testing.T) {
	coord, _ := newTestConsensus(t, QuorumAllActive)
	ctx := context.Background()

	c, err := coord.InitiateConsensus(ctx, "worker-1", "q?", []string{"a", "b"}, time.Minute)
	require.NoError(t, err)

	ok, err := coord.Vote(ctx, c.ID, "worker-2", "a")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = coord.Vote(ctx, c.ID, "worker-2", "b")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := coord.GetConsensus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"worker-2": "b"}, got.Votes)
}

func TestVoteAfterDeadline(t *testing.T) {
	coord, _ := newTestConsensus(t, QuorumAllActive)
	ctx := context.Background()

	c, err := coord.InitiateConsensus(ctx, "worker-1", "q?", []string{"a", "b"}, time.Minute)
	require.NoError(t, err)

	ok, err := coord.Vote(ctx, c.ID, "worker-2", "a")
	require.NoError(t, err)
	require.True(t, ok)

	coord.now = func() time.Time { return c.Deadline.Add(time.Second) }

	ok, err = coord.Vote(ctx, c.ID, "worker-3", "b")
	require.NoError(t, err)
	assert.False(t, ok)

	// The late vote did not change the tally; the earlier vote decided.
	got, err := coord.GetConsensus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConsensusResolved, got.Status)
	assert.Equal(t, "a", got.Winner)
	assert.Len(t, got.Votes, 1)
}

func TestDeadlineWithNoVotesExpires(t *testing.T) {
	coord, _ := newTestConsensus(t, QuorumAllActive)
	ctx := context.Background()

	c, err := coord.InitiateConsensus(ctx, "worker-1", "q?", []string{"a", "b"}, time.Minute)
	require.NoError(t, err)

	coord.now = func() time.Time { return c.Deadline.Add(time.Second) }

	got, err := coord.GetConsensus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConsensusExpired, got.Status)
	assert.Empty(t, got.Winner)
}

func TestTieBreaksTowardFirstDeclaredOption(t *testing.T) {
	coord, _ := newTestConsensus(t, QuorumAllActive)
	ctx := context.Background()

	c, err := coord.InitiateConsensus(ctx, "worker-1", "q?", []string{"blue", "green"}, time.Minute)
	require.NoError(t, err)

	ok, err := coord.Vote(ctx, c.ID, "worker-2", "green")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = coord.Vote(ctx, c.ID, "worker-3", "blue")
	require.NoError(t, err)
	require.True(t, ok)

	coord.now = func() time.Time { return c.Deadline.Add(time.Second) }

	got, err := coord.GetConsensus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConsensusResolved, got.Status)
	assert.Equal(t, "blue", got.Winner)
}

func TestMajorityQuorum(t *testing.T) {
	coord, bus := newTestConsensus(t, QuorumMajority)
	ctx := context.Background()

	for _, id := range []string{"worker-1", "worker-2", "worker-3"} {
		_, err := bus.RegisterAgent(ctx, id, "")
		require.NoError(t, err)
	}

	c, err := coord.InitiateConsensus(ctx, "worker-1", "q?", []string{"a", "b"}, time.Minute)
	require.NoError(t, err)

	ok, err := coord.Vote(ctx, c.ID, "worker-1", "a")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := coord.GetConsensus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConsensusPending, got.Status)

	ok, err = coord.Vote(ctx, c.ID, "worker-2", "a")
	require.NoError(t, err)
	require.True(t, ok)

	got, err = coord.GetConsensus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConsensusResolved, got.Status)
	assert.Equal(t, "a", got.Winner)
}

func TestGetPendingConsensusSkipsResolved(t *testing.T) {
	coord, _ := newTestConsensus(t, QuorumAllActive)
	ctx := context.Background()

	open, err := coord.InitiateConsensus(ctx, "worker-1", "open?", []string{"a", "b"}, time.Hour)
	require.NoError(t, err)
	due, err := coord.InitiateConsensus(ctx, "worker-1", "due?", []string{"a", "b"}, time.Minute)
	require.NoError(t, err)

	coord.now = func() time.Time { return due.Deadline.Add(time.Second) }

	pending, err := coord.GetPendingConsensus(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, open.ID, pending[0].ID)

	expired, err := coord.GetConsensus(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConsensusExpired, expired.Status)
}
