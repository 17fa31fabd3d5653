package daemon

import (
	"context"
	"fmt"
	"time"

	hoststat "github.com/likexian/host-stat-go"

	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/service"
	"github.com/ravenhall/waggle/pkg/logger"
)

// MetricsWorker is the long-lived host-resource sampler. Each tick records
// one sample into the learning store for later correlation with pattern use.
type MetricsWorker struct {
	store    learning.Store
	interval time.Duration
}

func NewMetricsWorker(store learning.Store, interval time.Duration) *MetricsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &MetricsWorker{store: store, interval: interval}
}

// Run loops until ctx is cancelled.
func (w *MetricsWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Sample(ctx); err != nil {
				logger.Warn("[Daemon] metrics sample failed: %v", err)
			}
		}
	}
}

// Sample records one host snapshot.
func (w *MetricsWorker) Sample(ctx context.Context) error {
	cpu, err := hoststat.GetCPUStat()
	if err != nil {
		return fmt.Errorf("cpu stat: %w", err)
	}
	mem, err := hoststat.GetMemStat()
	if err != nil {
		return fmt.Errorf("mem stat: %w", err)
	}
	load, err := hoststat.GetLoadStat()
	if err != nil {
		return fmt.Errorf("load stat: %w", err)
	}
	return w.store.RecordMetric(ctx, &learning.MetricSample{
		CPUPercent: 100 - cpu.IdleRate,
		MemPercent: mem.MemRate,
		LoadAvg:    load.LoadNow,
		RecordedAt: time.Now(),
	})
}

// ConsolidationWorker is the long-lived learning-store janitor: it drops
// low-quality patterns nobody ever used once they age out.
type ConsolidationWorker struct {
	store      learning.Store
	interval   time.Duration
	minQuality float64
	maxAge     time.Duration
}

func NewConsolidationWorker(store learning.Store, interval time.Duration, minQuality float64, maxAge time.Duration) *ConsolidationWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if minQuality <= 0 {
		minQuality = 0.3
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &ConsolidationWorker{
		store:      store,
		interval:   interval,
		minQuality: minQuality,
		maxAge:     maxAge,
	}
}

// Run loops until ctx is cancelled.
func (w *ConsolidationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Pass(ctx); err != nil {
				logger.Warn("[Daemon] consolidation pass failed: %v", err)
			}
		}
	}
}

// Pass runs one consolidation sweep.
func (w *ConsolidationWorker) Pass(ctx context.Context) error {
	removed, err := w.store.Consolidate(ctx, w.minQuality, time.Now().Add(-w.maxAge))
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Info("[Daemon] consolidated learning store, removed %d stale patterns", removed)
	}
	return nil
}

// notifyWorker posts a bus broadcast announcing a dispatched background
// task, so swarm peers can avoid duplicating the work. Used for the research
// and audit trigger types, whose real work happens in the host agent.
func notifyWorker(bus service.MessageBus, agentID string, typ TriggerType) WorkerFunc {
	return func(ctx context.Context, payload map[string]string) error {
		if bus == nil {
			return nil
		}
		content := fmt.Sprintf("background %s started", typ)
		if hint := payload["prompt"]; hint != "" {
			content = fmt.Sprintf("%s: %s", content, hint)
		}
		_, err := bus.Send(ctx, agentID, entity.BroadcastRecipient, content, entity.MessageGeneric, 0)
		return err
	}
}
