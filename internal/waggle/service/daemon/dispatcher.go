package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ravenhall/waggle/internal/waggle/service/daemon/pkg/errno"
	"github.com/ravenhall/waggle/pkg/logger"
)

// WorkerState is a dispatched worker's lifecycle state.
type WorkerState string

const (
	WorkerQueued    WorkerState = "queued"
	WorkerRunning   WorkerState = "running"
	WorkerDone      WorkerState = "done"
	WorkerFailed    WorkerState = "failed"
	WorkerCancelled WorkerState = "cancelled"
)

// WorkerFunc is the body of a dispatched worker. It must honor ctx
// cancellation.
type WorkerFunc func(ctx context.Context, payload map[string]string) error

// WorkerSpec registers a worker kind with the dispatcher. EstimatedDuration
// is a reporting hint only; nothing preempts on it.
type WorkerSpec struct {
	Run               WorkerFunc
	EstimatedDuration time.Duration
}

// WorkerStatus is a point-in-time view of one dispatched worker.
type WorkerStatus struct {
	ID                string        `json:"id"`
	Type              TriggerType   `json:"type"`
	State             WorkerState   `json:"state"`
	StartedAt         time.Time     `json:"started_at,omitempty"`
	EstimatedDuration time.Duration `json:"estimated_duration,omitempty"`
	Error             string        `json:"error,omitempty"`
}

// AdmissionPolicy decides what happens to a dispatch beyond capacity.
type AdmissionPolicy string

const (
	// AdmissionReject refuses dispatches over capacity.
	AdmissionReject AdmissionPolicy = "reject"

	// AdmissionBuffer parks dispatches in a bounded queue.
	AdmissionBuffer AdmissionPolicy = "buffer"
)

type worker struct {
	id      string
	typ     TriggerType
	payload map[string]string
	spec    WorkerSpec

	mu        sync.Mutex
	state     WorkerState
	startedAt time.Time
	errMsg    string
	cancel    context.CancelFunc
}

func (w *worker) status() WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WorkerStatus{
		ID:                w.id,
		Type:              w.typ,
		State:             w.state,
		StartedAt:         w.startedAt,
		EstimatedDuration: w.spec.EstimatedDuration,
		Error:             w.errMsg,
	}
}

func (w *worker) setState(s WorkerState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = s
}

// Dispatcher runs trigger-dispatched workers under a concurrency bound.
// Admission beyond MaxWorkers is rejected or buffered per policy, never
// silently run over capacity.
type Dispatcher struct {
	baseCtx   context.Context
	cancelAll context.CancelFunc

	admission AdmissionPolicy
	slots     chan struct{}
	queue     chan *worker

	mu       sync.Mutex
	registry map[TriggerType]WorkerSpec
	workers  map[string]*worker
	closed   bool

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher with maxWorkers concurrent slots. With
// AdmissionBuffer, queueSize bounds the parked dispatches.
func NewDispatcher(maxWorkers int, admission AdmissionPolicy, queueSize int) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 2
	}
	if queueSize <= 0 {
		queueSize = maxWorkers * 2
	}
	if admission == "" {
		admission = AdmissionReject
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		baseCtx:   ctx,
		cancelAll: cancel,
		admission: admission,
		slots:     make(chan struct{}, maxWorkers),
		queue:     make(chan *worker, queueSize),
		registry:  make(map[TriggerType]WorkerSpec),
		workers:   make(map[string]*worker),
	}
	d.wg.Add(1)
	go d.schedule()
	return d
}

// Register binds a trigger type to its worker implementation.
func (d *Dispatcher) Register(typ TriggerType, spec WorkerSpec) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registry[typ] = spec
}

// Dispatch admits and eventually runs one worker of the given type.
func (d *Dispatcher) Dispatch(typ TriggerType, payload map[string]string) (WorkerStatus, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return WorkerStatus{}, errno.ErrDispatcherClosed
	}
	spec, ok := d.registry[typ]
	if !ok {
		d.mu.Unlock()
		return WorkerStatus{}, errno.ErrUnknownTrigger
	}
	w := &worker{
		id:      uuid.NewString(),
		typ:     typ,
		payload: payload,
		spec:    spec,
		state:   WorkerQueued,
	}
	d.workers[w.id] = w
	defer d.mu.Unlock()

	select {
	case d.slots <- struct{}{}:
		d.start(w)
		return w.status(), nil
	default:
	}

	if d.admission == AdmissionBuffer {
		select {
		case d.queue <- w:
			logger.Debug("[Daemon] worker %s (%s) queued", w.id, typ)
			return w.status(), nil
		default:
			delete(d.workers, w.id)
			return WorkerStatus{}, errno.ErrQueueFull
		}
	}
	delete(d.workers, w.id)
	return WorkerStatus{}, errno.ErrAtCapacity
}

// Status reports all workers still queued or running.
func (d *Dispatcher) Status() []WorkerStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []WorkerStatus
	for _, w := range d.workers {
		st := w.status()
		if st.State == WorkerQueued || st.State == WorkerRunning {
			out = append(out, st)
		}
	}
	return out
}

// Cancel stops a queued or running worker. Returns false when the ID is
// unknown or the worker already finished.
func (d *Dispatcher) Cancel(id string) bool {
	d.mu.Lock()
	w, ok := d.workers[id]
	d.mu.Unlock()
	if !ok {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case WorkerQueued:
		// The scheduler skips cancelled entries when they surface.
		w.state = WorkerCancelled
		return true
	case WorkerRunning:
		w.cancel()
		return true
	default:
		return false
	}
}

// Close cancels everything and waits for in-flight workers to unwind.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancelAll()
	close(d.queue)
	d.wg.Wait()
}

// schedule drains the buffer queue as slots free up.
func (d *Dispatcher) schedule() {
	defer d.wg.Done()
	for w := range d.queue {
		if st := w.status(); st.State != WorkerQueued {
			d.drop(w)
			continue
		}
		select {
		case d.slots <- struct{}{}:
			d.start(w)
		case <-d.baseCtx.Done():
			w.setState(WorkerCancelled)
		}
	}
}

// start runs a worker in its own goroutine, holding one slot for its
// lifetime.
func (d *Dispatcher) start(w *worker) {
	ctx, cancel := context.WithCancel(d.baseCtx)

	w.mu.Lock()
	if w.state != WorkerQueued {
		w.mu.Unlock()
		cancel()
		<-d.slots
		return
	}
	w.state = WorkerRunning
	w.startedAt = time.Now()
	w.cancel = cancel
	w.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() { <-d.slots }()

		logger.Info("[Daemon] worker %s (%s) started", w.id, w.typ)
		err := w.spec.Run(ctx, w.payload)

		w.mu.Lock()
		switch {
		case ctx.Err() != nil:
			w.state = WorkerCancelled
		case err != nil:
			w.state = WorkerFailed
			w.errMsg = err.Error()
		default:
			w.state = WorkerDone
		}
		final := w.state
		w.mu.Unlock()
		d.drop(w)
		logger.Info("[Daemon] worker %s (%s) finished: %s", w.id, w.typ, final)
	}()
}

func (d *Dispatcher) drop(w *worker) {
	d.mu.Lock()
	delete(d.workers, w.id)
	d.mu.Unlock()
}
