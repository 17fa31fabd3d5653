package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/daemon/pkg/errno"
)

// blockingSpec returns a worker that blocks until released (or cancelled)
// and a release func.
func blockingSpec() (WorkerSpec, func()) {
	release := make(chan struct{})
	var once sync.Once
	spec := WorkerSpec{
		Run: func(ctx context.Context, _ map[string]string) error {
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		EstimatedDuration: time.Second,
	}
	return spec, func() { once.Do(func() { close(release) }) }
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatchUnknownTrigger(t *testing.T) {
	d := NewDispatcher(1, AdmissionReject, 0)
	defer d.Close()

	_, err := d.Dispatch(TriggerResearch, nil)
	assert.ErrorIs(t, err, errno.ErrUnknownTrigger)
}

func TestDispatchRunsWorker(t *testing.T) {
	d := NewDispatcher(1, AdmissionReject, 0)
	defer d.Close()

	done := make(chan struct{})
	d.Register(TriggerMetrics, WorkerSpec{
		Run: func(ctx context.Context, payload map[string]string) error {
			assert.Equal(t, "x", payload["key"])
			close(done)
			return nil
		},
	})

	st, err := d.Dispatch(TriggerMetrics, map[string]string{"key": "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not run")
	}
}

func TestDispatchRejectsOverCapacity(t *testing.T) {
	d := NewDispatcher(1, AdmissionReject, 0)
	defer d.Close()

	spec, release := blockingSpec()
	defer release()
	d.Register(TriggerResearch, spec)

	_, err := d.Dispatch(TriggerResearch, nil)
	require.NoError(t, err)

	_, err = d.Dispatch(TriggerResearch, nil)
	assert.ErrorIs(t, err, errno.ErrAtCapacity)

	release()
	waitFor(t, func() bool { return len(d.Status()) == 0 })

	_, err = d.Dispatch(TriggerResearch, nil)
	assert.NoError(t, err, "slot freed after completion")
}

func TestDispatchBuffersOverCapacity(t *testing.T) {
	d := NewDispatcher(1, AdmissionBuffer, 1)
	defer d.Close()

	spec, release := blockingSpec()
	defer release()
	d.Register(TriggerResearch, spec)

	first, err := d.Dispatch(TriggerResearch, nil)
	require.NoError(t, err)
	waitFor(t, func() bool {
		for _, st := range d.Status() {
			if st.ID == first.ID && st.State == WorkerRunning {
				return true
			}
		}
		return false
	})

	queued, err := d.Dispatch(TriggerResearch, nil)
	require.NoError(t, err)
	assert.Equal(t, WorkerQueued, queued.State)

	// Queue is bounded.
	_, err = d.Dispatch(TriggerResearch, nil)
	assert.ErrorIs(t, err, errno.ErrQueueFull)

	// Releasing the slot lets the queued worker run to completion.
	release()
	waitFor(t, func() bool { return len(d.Status()) == 0 })
}

func TestCancelRunningWorker(t *testing.T) {
	d := NewDispatcher(1, AdmissionReject, 0)
	defer d.Close()

	spec, release := blockingSpec()
	defer release()
	d.Register(TriggerAudit, spec)

	st, err := d.Dispatch(TriggerAudit, nil)
	require.NoError(t, err)

	waitFor(t, func() bool {
		for _, s := range d.Status() {
			if s.ID == st.ID && s.State == WorkerRunning {
				return true
			}
		}
		return false
	})

	assert.True(t, d.Cancel(st.ID))
	waitFor(t, func() bool { return len(d.Status()) == 0 })

	// A finished worker cannot be cancelled again.
	assert.False(t, d.Cancel(st.ID))
	assert.False(t, d.Cancel("no-such-worker"))
}

func TestCancelQueuedWorker(t *testing.T) {
	d := NewDispatcher(1, AdmissionBuffer, 2)
	defer d.Close()

	spec, release := blockingSpec()
	defer release()
	d.Register(TriggerAudit, spec)

	_, err := d.Dispatch(TriggerAudit, nil)
	require.NoError(t, err)
	queued, err := d.Dispatch(TriggerAudit, nil)
	require.NoError(t, err)
	require.Equal(t, WorkerQueued, queued.State)

	assert.True(t, d.Cancel(queued.ID))

	release()
	waitFor(t, func() bool { return len(d.Status()) == 0 })
}

func TestDispatchAfterClose(t *testing.T) {
	d := NewDispatcher(1, AdmissionReject, 0)
	d.Register(TriggerMetrics, WorkerSpec{
		Run: func(context.Context, map[string]string) error { return nil },
	})
	d.Close()

	_, err := d.Dispatch(TriggerMetrics, nil)
	assert.ErrorIs(t, err, errno.ErrDispatcherClosed)
}
