package cmd

import (
	"github.com/spf13/pflag"

	"github.com/ravenhall/waggle/internal/wagglectl/cmd/util"
)

var globalOpts = util.NewConnectionOptions()

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVar(&globalOpts.AgentID, "agent-id", globalOpts.AgentID,
		"Swarm identity this invocation acts as")
	flags.StringVar(&globalOpts.AgentName, "agent-name", globalOpts.AgentName,
		"Display name registered for --agent-id")
	flags.StringVar(&globalOpts.StoreType, "store-type", globalOpts.StoreType,
		"Swarm store backend: boltdb or inmemory")
	flags.StringVar(&globalOpts.BoltDBPath, "boltdb-path", globalOpts.BoltDBPath,
		"Swarm BoltDB file path")
	flags.StringVar(&globalOpts.LearningDBPath, "learning-db-path", globalOpts.LearningDBPath,
		"Learning SQLite file path; empty disables pattern import persistence")
	flags.StringVar(&globalOpts.QuorumRule, "quorum-rule", globalOpts.QuorumRule,
		"Consensus early-resolution rule: all-active or majority")
	flags.StringVarP(&globalOpts.Output, "output", "o", globalOpts.Output,
		"Output format: json or table")
	flags.StringVar(&globalOpts.LogLevel, "log-level", globalOpts.LogLevel,
		"Log level: debug, info, warn, error")
}
