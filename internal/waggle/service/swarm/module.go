package swarm

import (
	"context"
	"fmt"

	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/service"
	boltdbStore "github.com/ravenhall/waggle/internal/waggle/service/swarm/store/boltdb"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/store/inmemory"
	"github.com/ravenhall/waggle/pkg/logger"
)

// Config holds the configuration for the Swarm module.
// Follows K8S-style: Config → Complete() → New(ctx, deps).
type Config struct {
	// AgentID is the identity this process acts as on the bus.
	AgentID string `json:"agent_id,omitempty"`

	// AgentName is the display name registered for AgentID.
	AgentName string `json:"agent_name,omitempty"`

	// StoreType selects the persistence backend: "inmemory" or "boltdb".
	// Default: "boltdb".
	StoreType string `json:"store_type,omitempty"`

	// BoltDBPath is the file path for BoltDB storage (when StoreType="boltdb").
	// Default: "data/waggle.db".
	BoltDBPath string `json:"boltdb_path,omitempty"`

	// QuorumRule picks the early-resolution rule for consensus:
	// "all-active" (default) or "majority".
	QuorumRule string `json:"quorum_rule,omitempty"`
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.AgentID == "" {
		c.AgentID = "waggle-local"
	}
	if c.StoreType == "" {
		c.StoreType = "boltdb"
	}
	if c.BoltDBPath == "" {
		c.BoltDBPath = "data/waggle.db"
	}
	if c.QuorumRule == "" {
		c.QuorumRule = string(service.QuorumAllActive)
	}
	return CompletedConfig{c}
}

// Dependencies holds the external collaborators of the Swarm module.
type Dependencies struct {
	// Patterns is the local learning store; nil disables pattern import
	// persistence (acknowledgments still work).
	Patterns learning.Store
}

// Module is the top-level Swarm module, holding all coordination services.
type Module struct {
	AgentID   string
	Bus       service.MessageBus
	Patterns  service.PatternChannel
	Consensus service.ConsensusCoordinator
	Handoffs  service.HandoffCoordinator
	Stats     *service.StatsCollector

	boltDB *boltdbStore.DB // nil when using inmemory store
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	if m.boltDB != nil {
		return m.boltDB.Close()
	}
	return nil
}

// New creates and initializes the Swarm module from a completed config.
func (c CompletedConfig) New(ctx context.Context, deps Dependencies) (*Module, error) {
	logger.Info("[Swarm] creating Swarm module...")

	var (
		messageStore   repo.MessageRepository
		agentStore     repo.AgentRepository
		broadcastStore repo.BroadcastRepository
		consensusStore repo.ConsensusRepository
		handoffStore   repo.HandoffRepository
		boltDB         *boltdbStore.DB
	)

	switch c.StoreType {
	case "inmemory":
		messageStore = inmemory.NewMessageStore()
		agentStore = inmemory.NewAgentStore()
		broadcastStore = inmemory.NewBroadcastStore()
		consensusStore = inmemory.NewConsensusStore()
		handoffStore = inmemory.NewHandoffStore()
		logger.Info("[Swarm] using in-memory store")
	default:
		var err error
		boltDB, err = boltdbStore.Open(c.BoltDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb at %s: %w", c.BoltDBPath, err)
		}
		messageStore = boltdbStore.NewMessageStore(boltDB)
		agentStore = boltdbStore.NewAgentStore(boltDB)
		broadcastStore = boltdbStore.NewBroadcastStore(boltDB)
		consensusStore = boltdbStore.NewConsensusStore(boltDB)
		handoffStore = boltdbStore.NewHandoffStore(boltDB)
		logger.Info("[Swarm] using BoltDB store at %s", c.BoltDBPath)
	}

	bus := service.NewMessageBus(messageStore, agentStore)
	if _, err := bus.RegisterAgent(ctx, c.AgentID, c.AgentName); err != nil {
		if boltDB != nil {
			boltDB.Close()
		}
		return nil, fmt.Errorf("failed to register agent %s: %w", c.AgentID, err)
	}

	m := &Module{
		AgentID:   c.AgentID,
		Bus:       bus,
		Patterns:  service.NewPatternChannel(bus, broadcastStore, deps.Patterns),
		Consensus: service.NewConsensusCoordinator(bus, consensusStore, service.QuorumRule(c.QuorumRule)),
		Handoffs:  service.NewHandoffCoordinator(bus, handoffStore),
		Stats:     service.NewStatsCollector(messageStore, agentStore, broadcastStore, consensusStore, handoffStore),
		boltDB:    boltDB,
	}

	logger.Info("[Swarm] Swarm module initialized (agent=%s, store=%s, quorum=%s)",
		c.AgentID, c.StoreType, c.QuorumRule)
	return m, nil
}
