package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/service"
	"github.com/ravenhall/waggle/pkg/logger"
)

// Config holds the configuration for the Daemon module.
// Follows K8S-style: Config → Complete() → New(ctx, deps).
type Config struct {
	// MaxWorkers bounds concurrently running dispatched workers.
	// Default: 2.
	MaxWorkers int `json:"max_workers,omitempty"`

	// Admission selects the over-capacity policy: "reject" (default) or
	// "buffer".
	Admission string `json:"admission,omitempty"`

	// QueueSize bounds the buffer queue (when Admission="buffer").
	// Default: 2 * MaxWorkers.
	QueueSize int `json:"queue_size,omitempty"`

	// MetricsInterval is the long-lived sampler period. Default: 1m.
	MetricsInterval time.Duration `json:"metrics_interval,omitempty"`

	// ConsolidationInterval is the janitor period. Default: 1h.
	ConsolidationInterval time.Duration `json:"consolidation_interval,omitempty"`

	// ConsolidationMinQuality and ConsolidationMaxAge pick what the janitor
	// drops: patterns below the quality bar, never used, older than the age.
	ConsolidationMinQuality float64       `json:"consolidation_min_quality,omitempty"`
	ConsolidationMaxAge     time.Duration `json:"consolidation_max_age,omitempty"`
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 2
	}
	if c.Admission == "" {
		c.Admission = string(AdmissionReject)
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 2 * c.MaxWorkers
	}
	if c.MetricsInterval <= 0 {
		c.MetricsInterval = time.Minute
	}
	if c.ConsolidationInterval <= 0 {
		c.ConsolidationInterval = time.Hour
	}
	if c.ConsolidationMinQuality <= 0 {
		c.ConsolidationMinQuality = 0.3
	}
	if c.ConsolidationMaxAge <= 0 {
		c.ConsolidationMaxAge = 7 * 24 * time.Hour
	}
	return CompletedConfig{c}
}

// Dependencies holds the external collaborators of the Daemon module.
type Dependencies struct {
	// Bus lets dispatched workers announce themselves to the swarm.
	// Optional.
	Bus service.MessageBus

	// AgentID is the identity used for bus announcements.
	AgentID string

	// Patterns enables the metrics and consolidation workers. Optional;
	// when nil those workers are not started.
	Patterns learning.Store
}

// Module is the top-level Daemon module.
type Module struct {
	Dispatcher *Dispatcher

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes the Daemon module from a completed config.
func (c CompletedConfig) New(_ context.Context, deps Dependencies) (*Module, error) {
	logger.Info("[Daemon] creating Daemon module...")

	d := NewDispatcher(c.MaxWorkers, AdmissionPolicy(c.Admission), c.QueueSize)

	d.Register(TriggerResearch, WorkerSpec{
		Run:               notifyWorker(deps.Bus, deps.AgentID, TriggerResearch),
		EstimatedDuration: 2 * time.Minute,
	})
	d.Register(TriggerAudit, WorkerSpec{
		Run:               notifyWorker(deps.Bus, deps.AgentID, TriggerAudit),
		EstimatedDuration: 5 * time.Minute,
	})

	loopCtx, cancel := context.WithCancel(context.Background())
	m := &Module{Dispatcher: d, cancel: cancel}

	if deps.Patterns != nil {
		metrics := NewMetricsWorker(deps.Patterns, c.MetricsInterval)
		janitor := NewConsolidationWorker(deps.Patterns, c.ConsolidationInterval,
			c.ConsolidationMinQuality, c.ConsolidationMaxAge)

		d.Register(TriggerMetrics, WorkerSpec{
			Run: func(ctx context.Context, _ map[string]string) error {
				return metrics.Sample(ctx)
			},
			EstimatedDuration: 5 * time.Second,
		})
		d.Register(TriggerConsolidation, WorkerSpec{
			Run: func(ctx context.Context, _ map[string]string) error {
				return janitor.Pass(ctx)
			},
			EstimatedDuration: 30 * time.Second,
		})

		m.wg.Add(2)
		go func() {
			defer m.wg.Done()
			metrics.Run(loopCtx)
		}()
		go func() {
			defer m.wg.Done()
			janitor.Run(loopCtx)
		}()
	}

	logger.Info("[Daemon] Daemon module initialized (max_workers=%d, admission=%s)",
		c.MaxWorkers, c.Admission)
	return m, nil
}

// Close stops the long-lived workers and drains the dispatcher.
func (m *Module) Close() error {
	m.cancel()
	m.wg.Wait()
	m.Dispatcher.Close()
	return nil
}
