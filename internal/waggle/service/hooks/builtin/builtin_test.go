package builtin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/daemon"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/service"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/store/inmemory"
)

type fakeStore struct {
	mu    sync.Mutex
	saved []*learning.Pattern
}

func (s *fakeStore) Save(_ context.Context, p *learning.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, p)
	return nil
}

func (s *fakeStore) Get(context.Context, string) (*learning.Pattern, error) { return nil, nil }
func (s *fakeStore) Find(context.Context, string, int) ([]*learning.Pattern, error) {
	return nil, nil
}
func (s *fakeStore) Touch(context.Context, string) error                      { return nil }
func (s *fakeStore) RecordMetric(context.Context, *learning.MetricSample) error { return nil }
func (s *fakeStore) Consolidate(context.Context, float64, time.Time) (int, error) {
	return 0, nil
}
func (s *fakeStore) Close() error { return nil }

func newTestModule(t *testing.T, deps Deps) *hooks.Module {
	t.Helper()
	m := (&hooks.Config{}).Complete().New()
	require.NoError(t, RegisterAll(m.Registry, deps))
	return m
}

func TestCommandGuardBlocksDangerous(t *testing.T) {
	m := newTestModule(t, Deps{})

	hctx := entity.NewContext(entity.EventPreCommand)
	hctx.Command = &entity.CommandInvocation{Raw: "sudo rm -rf / "}

	res, err := m.Executor.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.True(t, res.Aborted)
	require.NotEmpty(t, res.AbortReason)
}

func TestCommandGuardAllowsBenign(t *testing.T) {
	m := newTestModule(t, Deps{})

	for _, cmd := range []string{
		"ls -la",
		"rm -rf ./build",
		"git push --force-with-lease",
		"chmod 777 ./scratch",
	} {
		hctx := entity.NewContext(entity.EventPreCommand)
		hctx.Command = &entity.CommandInvocation{Raw: cmd}

		res, err := m.Executor.Execute(context.Background(), hctx)
		require.NoError(t, err)
		require.False(t, res.Aborted, "command %q should pass", cmd)
	}
}

func TestPatternRecorderSaves(t *testing.T) {
	store := &fakeStore{}
	m := newTestModule(t, Deps{Patterns: store})

	hctx := entity.NewContext(entity.EventPatternLearned)
	hctx.Metadata = map[string]interface{}{
		"strategy": "prefer table tests",
		"domain":   "testing",
		"quality":  0.9,
	}

	res, err := m.Executor.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, store.saved, 1)
	require.Equal(t, "prefer table tests", store.saved[0].Strategy)
	require.Equal(t, 0.9, store.saved[0].Quality)
}

func TestPatternRecorderNoOpWithoutStrategy(t *testing.T) {
	store := &fakeStore{}
	m := newTestModule(t, Deps{Patterns: store})

	res, err := m.Executor.Execute(context.Background(), entity.NewContext(entity.EventPatternLearned))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Empty(t, store.saved)
}

func TestTaskTriggerDispatchesWorkers(t *testing.T) {
	d := daemon.NewDispatcher(2, daemon.AdmissionReject, 0)
	defer d.Close()

	done := make(chan map[string]string, 1)
	d.Register(daemon.TriggerResearch, daemon.WorkerSpec{
		Run: func(_ context.Context, payload map[string]string) error {
			done <- payload
			return nil
		},
	})

	m := newTestModule(t, Deps{Dispatcher: d})

	hctx := entity.NewContext(entity.EventPostTask)
	hctx.Task = &entity.TaskDescriptor{
		ID:          "t1",
		Description: "research and investigate the options for caching",
	}

	res, err := m.Executor.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.True(t, res.Success)

	select {
	case payload := <-done:
		require.Equal(t, "t1", payload["task_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("research worker never ran")
	}
}

func TestSessionAnnouncerRegistersAgent(t *testing.T) {
	bus := service.NewMessageBus(inmemory.NewMessageStore(), inmemory.NewAgentStore())
	m := newTestModule(t, Deps{Bus: bus, AgentID: "hook-agent"})

	res, err := m.Executor.Execute(context.Background(), entity.NewContext(entity.EventSessionStart))
	require.NoError(t, err)
	require.True(t, res.Success)

	a, err := bus.GetAgent(context.Background(), "hook-agent")
	require.NoError(t, err)
	require.Equal(t, "hook-agent", a.ID)
}

func TestHandlersNoOpWithoutDeps(t *testing.T) {
	m := newTestModule(t, Deps{})

	for _, ev := range []entity.Event{
		entity.EventPatternLearned,
		entity.EventPostTask,
		entity.EventSessionStart,
	} {
		res, err := m.Executor.Execute(context.Background(), entity.NewContext(ev))
		require.NoError(t, err)
		require.True(t, res.Success, "event %s must succeed with nil deps", ev)
	}
}
