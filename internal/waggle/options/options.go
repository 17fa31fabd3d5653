package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/ravenhall/waggle/pkg/utils/json"
)

// Options is the full flag/config surface of the waggle daemon.
type Options struct {
	// AgentID is the swarm identity this process acts as.
	AgentID string `json:"agent_id" mapstructure:"agent-id"`

	// AgentName is the display name registered for AgentID.
	AgentName string `json:"agent_name" mapstructure:"agent-name"`

	// StoreType selects the swarm persistence backend: "boltdb" or
	// "inmemory".
	StoreType string `json:"store_type" mapstructure:"store-type"`

	// BoltDBPath is the swarm store location.
	BoltDBPath string `json:"boltdb_path" mapstructure:"boltdb-path"`

	// LearningDBPath is the SQLite learning store location. Empty disables
	// the learning store and the workers that feed it.
	LearningDBPath string `json:"learning_db_path" mapstructure:"learning-db-path"`

	// PolicyFile is the hook policy file watched for hot reload.
	PolicyFile string `json:"policy_file" mapstructure:"policy-file"`

	// BindAddress and BindPort locate the status HTTP server.
	BindAddress string `json:"bind_address" mapstructure:"bind-address"`
	BindPort    int    `json:"bind_port" mapstructure:"bind-port"`

	// QuorumRule picks the consensus early-resolution rule.
	QuorumRule string `json:"quorum_rule" mapstructure:"quorum-rule"`

	// MaxWorkers, Admission and QueueSize configure the dispatcher.
	MaxWorkers int    `json:"max_workers" mapstructure:"max-workers"`
	Admission  string `json:"admission" mapstructure:"admission"`
	QueueSize  int    `json:"queue_size" mapstructure:"queue-size"`

	// MetricsInterval and ConsolidationInterval pace the long-lived
	// workers.
	MetricsInterval       time.Duration `json:"metrics_interval" mapstructure:"metrics-interval"`
	ConsolidationInterval time.Duration `json:"consolidation_interval" mapstructure:"consolidation-interval"`

	// HandlerTimeout bounds each hook handler invocation.
	HandlerTimeout time.Duration `json:"handler_timeout" mapstructure:"handler-timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" mapstructure:"log-level"`
}

// NewOptions returns the default option set.
func NewOptions() *Options {
	return &Options{
		AgentID:               "waggle-local",
		StoreType:             "boltdb",
		BoltDBPath:            "data/waggle.db",
		LearningDBPath:        "data/learning.db",
		PolicyFile:            "data/hook-policy.json",
		BindAddress:           "127.0.0.1",
		BindPort:              11820,
		QuorumRule:            "all-active",
		MaxWorkers:            2,
		Admission:             "reject",
		MetricsInterval:       time.Minute,
		ConsolidationInterval: time.Hour,
		LogLevel:              "info",
	}
}

// AddFlags binds the option set to a flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.AgentID, "agent-id", o.AgentID, "Swarm identity this daemon acts as.")
	fs.StringVar(&o.AgentName, "agent-name", o.AgentName, "Display name registered for the agent.")
	fs.StringVar(&o.StoreType, "store-type", o.StoreType, "Swarm store backend: boltdb or inmemory.")
	fs.StringVar(&o.BoltDBPath, "boltdb-path", o.BoltDBPath, "Swarm BoltDB file path.")
	fs.StringVar(&o.LearningDBPath, "learning-db-path", o.LearningDBPath, "Learning SQLite file path; empty disables.")
	fs.StringVar(&o.PolicyFile, "policy-file", o.PolicyFile, "Hook policy file, hot-reloaded on change.")
	fs.StringVar(&o.BindAddress, "bind-address", o.BindAddress, "Status server bind address.")
	fs.IntVar(&o.BindPort, "bind-port", o.BindPort, "Status server bind port.")
	fs.StringVar(&o.QuorumRule, "quorum-rule", o.QuorumRule, "Consensus quorum rule: all-active or majority.")
	fs.IntVar(&o.MaxWorkers, "max-workers", o.MaxWorkers, "Maximum concurrent dispatched workers.")
	fs.StringVar(&o.Admission, "admission", o.Admission, "Over-capacity policy: reject or buffer.")
	fs.IntVar(&o.QueueSize, "queue-size", o.QueueSize, "Buffer queue size (admission=buffer).")
	fs.DurationVar(&o.MetricsInterval, "metrics-interval", o.MetricsInterval, "Host metrics sampling period.")
	fs.DurationVar(&o.ConsolidationInterval, "consolidation-interval", o.ConsolidationInterval, "Learning-store consolidation period.")
	fs.DurationVar(&o.HandlerTimeout, "handler-timeout", o.HandlerTimeout, "Per-handler hook timeout (0 = default).")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug, info, warn, error.")
}

// Validate checks flag consistency.
func (o *Options) Validate() []error {
	var errs []error
	switch o.StoreType {
	case "boltdb", "inmemory":
	default:
		errs = append(errs, fmt.Errorf("invalid store type %q", o.StoreType))
	}
	switch o.Admission {
	case "reject", "buffer":
	default:
		errs = append(errs, fmt.Errorf("invalid admission policy %q", o.Admission))
	}
	switch o.QuorumRule {
	case "all-active", "majority":
	default:
		errs = append(errs, fmt.Errorf("invalid quorum rule %q", o.QuorumRule))
	}
	if o.BindPort <= 0 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid bind port %d", o.BindPort))
	}
	return errs
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}
