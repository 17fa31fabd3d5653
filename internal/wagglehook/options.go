package wagglehook

import (
	"time"

	"github.com/spf13/pflag"
)

// Options is the flag surface of the bridge binary. The bridge is invoked
// once per hook event, so everything must be reachable from flags or the
// host environment; there is no long-lived state beyond the stores.
type Options struct {
	AgentID        string
	StoreType      string
	BoltDBPath     string
	LearningDBPath string
	PolicyFile     string
	HandlerTimeout time.Duration
	LogLevel       string
}

// NewOptions returns the default option set.
func NewOptions() *Options {
	return &Options{
		AgentID:        "waggle-local",
		StoreType:      "boltdb",
		BoltDBPath:     "data/waggle.db",
		LearningDBPath: "data/learning.db",
		PolicyFile:     "data/hook-policy.json",
		LogLevel:       "warn",
	}
}

// AddFlags binds the option set to a flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.AgentID, "agent-id", o.AgentID, "Swarm identity this bridge acts as.")
	fs.StringVar(&o.StoreType, "store-type", o.StoreType, "Swarm store backend: boltdb or inmemory.")
	fs.StringVar(&o.BoltDBPath, "boltdb-path", o.BoltDBPath, "Swarm BoltDB file path.")
	fs.StringVar(&o.LearningDBPath, "learning-db-path", o.LearningDBPath, "Learning SQLite file path; empty disables.")
	fs.StringVar(&o.PolicyFile, "policy-file", o.PolicyFile, "Hook policy file applied at startup.")
	fs.DurationVar(&o.HandlerTimeout, "handler-timeout", o.HandlerTimeout, "Per-handler timeout (0 = default).")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug, info, warn, error.")
}
