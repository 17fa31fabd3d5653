package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/store/inmemory"
)

// fakeLearningStore records saved patterns keyed by ID.
type fakeLearningStore struct {
	saved map[string]*learning.Pattern
}

func newFakeLearningStore() *fakeLearningStore {
	return &fakeLearningStore{saved: make(map[string]*learning.Pattern)}
}

func (f *fakeLearningStore) Save(_ context.Context, p *learning.Pattern) error {
	f.saved[p.ID] = p
	return nil
}

func (f *fakeLearningStore) Get(_ context.Context, id string) (*learning.Pattern, error) {
	return f.saved[id], nil
}

func (f *fakeLearningStore) Find(_ context.Context, _ string, _ int) ([]*learning.Pattern, error) {
	return nil, nil
}

func (f *fakeLearningStore) Touch(_ context.Context, _ string) error { return nil }

func (f *fakeLearningStore) RecordMetric(_ context.Context, _ *learning.MetricSample) error {
	return nil
}

func (f *fakeLearningStore) Consolidate(_ context.Context, _ float64, _ time.Time) (int, error) {
	return 0, nil
}

func (f *fakeLearningStore) Close() error { return nil }

func newTestPatternChannel(t *testing.T) (PatternChannel, MessageBus, *fakeLearningStore) {
	t.Helper()
	bus := newTestBus()
	store := newFakeLearningStore()
	return NewPatternChannel(bus, inmemory.NewBroadcastStore(), store), bus, store
}

func TestBroadcastPattern(t *testing.T) {
	ch, bus, _ := newTestPatternChannel(t)
	ctx := context.Background()

	bc, err := ch.BroadcastPattern(ctx, "worker-1", entity.Pattern{
		Strategy: "batch file reads before edits",
		Domain:   "refactoring",
		Quality:  0.9,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, bc.ID)
	assert.NotEmpty(t, bc.MessageID)

	// The broadcast rides on a bus message every agent can see.
	msgs, err := bus.GetMessages(ctx, repo.MessageFilter{Agent: "worker-2", Type: entity.MessagePattern})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, bc.ID, msgs[0].Ref)

	// The sharing counter moved.
	agent, err := bus.GetAgent(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, 1, agent.PatternsShared)
}

func TestBroadcastPatternValidation(t *testing.T) {
	ch, _, _ := newTestPatternChannel(t)

	_, err := ch.BroadcastPattern(context.Background(), "worker-1", entity.Pattern{})
	assert.ErrorIs(t, err, errno.ErrEmptyStrategy)
}

func TestBroadcastPatternClampsQuality(t *testing.T) {
	ch, _, _ := newTestPatternChannel(t)
	ctx := context.Background()

	bc, err := ch.BroadcastPattern(ctx, "worker-1", entity.Pattern{Strategy: "s", Quality: 1.7})
	require.NoError(t, err)
	assert.Equal(t, 1.0, bc.Pattern.Quality)
}

func TestGetPatternBroadcastsFilter(t *testing.T) {
	ch, _, _ := newTestPatternChannel(t)
	ctx := context.Background()

	_, err := ch.BroadcastPattern(ctx, "worker-1", entity.Pattern{Strategy: "a", Domain: "testing", Quality: 0.9})
	require.NoError(t, err)
	_, err = ch.BroadcastPattern(ctx, "worker-1", entity.Pattern{Strategy: "b", Domain: "testing", Quality: 0.3})
	require.NoError(t, err)
	_, err = ch.BroadcastPattern(ctx, "worker-1", entity.Pattern{Strategy: "c", Domain: "build", Quality: 0.9})
	require.NoError(t, err)

	got, err := ch.GetPatternBroadcasts(ctx, entity.BroadcastFilter{Domain: "testing", MinQuality: 0.5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Pattern.Strategy)
}

func TestImportBroadcastPatternIdempotent(t *testing.T) {
	ch, _, store := newTestPatternChannel(t)
	ctx := context.Background()

	bc, err := ch.BroadcastPattern(ctx, "worker-1", entity.Pattern{Strategy: "s", Quality: 0.8})
	require.NoError(t, err)

	ok, err := ch.ImportBroadcastPattern(ctx, bc.ID, "worker-2")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second import by the same agent: acknowledged already, no new copy.
	ok, err = ch.ImportBroadcastPattern(ctx, bc.ID, "worker-2")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := ch.GetPatternBroadcasts(ctx, entity.BroadcastFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"worker-2"}, got[0].AckedBy)
	assert.Len(t, store.saved, 1)
}

func TestImportBroadcastPatternUnknownID(t *testing.T) {
	ch, _, _ := newTestPatternChannel(t)

	_, err := ch.ImportBroadcastPattern(context.Background(), "missing", "worker-2")
	assert.ErrorIs(t, err, errno.ErrBroadcastNotFound)
}
