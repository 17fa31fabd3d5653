package util

import (
	"context"
	"fmt"

	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/learning/sqlite"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm"
	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
)

// ConnectionOptions selects the identity and stores a command invocation
// operates on. The fields are bound to the root command's persistent flags,
// so they carry the parsed values by the time any Run executes.
type ConnectionOptions struct {
	AgentID        string
	AgentName      string
	StoreType      string
	BoltDBPath     string
	LearningDBPath string
	QuorumRule     string
	Output         string
	LogLevel       string
}

// NewConnectionOptions returns the default connection options.
func NewConnectionOptions() *ConnectionOptions {
	return &ConnectionOptions{
		AgentID:        "waggle-local",
		StoreType:      "boltdb",
		BoltDBPath:     "data/waggle.db",
		LearningDBPath: "data/learning.db",
		QuorumRule:     "all-active",
		Output:         OutputJSON,
		LogLevel:       "warn",
	}
}

// Factory wires subcommands to the swarm services. One module is opened
// lazily per invocation and shared; the root command closes it after Run.
type Factory interface {
	// Swarm returns the shared swarm module, opening it on first use.
	Swarm(ctx context.Context) (*swarm.Module, error)

	// AgentID is the identity this invocation acts as.
	AgentID() string

	// Printer renders command output in the selected format.
	Printer() *Printer

	// Close releases the module and its stores.
	Close() error
}

// NewFactory builds the default factory over the given connection options.
func NewFactory(opts *ConnectionOptions, ioStreams genericclioptions.IOStreams) Factory {
	return &defaultFactory{opts: opts, streams: ioStreams}
}

type defaultFactory struct {
	opts    *ConnectionOptions
	streams genericclioptions.IOStreams

	module   *swarm.Module
	patterns learning.Store
	printer  *Printer
}

func (f *defaultFactory) AgentID() string {
	return f.opts.AgentID
}

func (f *defaultFactory) Printer() *Printer {
	if f.printer == nil {
		f.printer = NewPrinter(f.opts.Output, f.streams)
	}
	return f.printer
}

func (f *defaultFactory) Swarm(ctx context.Context) (*swarm.Module, error) {
	if f.module != nil {
		return f.module, nil
	}

	if f.opts.LearningDBPath != "" {
		store, err := sqlite.Open(f.opts.LearningDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open learning store: %w", err)
		}
		f.patterns = store
	}

	cfg := &swarm.Config{
		AgentID:    f.opts.AgentID,
		AgentName:  f.opts.AgentName,
		StoreType:  f.opts.StoreType,
		BoltDBPath: f.opts.BoltDBPath,
		QuorumRule: f.opts.QuorumRule,
	}
	module, err := cfg.Complete().New(ctx, swarm.Dependencies{Patterns: f.patterns})
	if err != nil {
		if f.patterns != nil {
			_ = f.patterns.Close()
			f.patterns = nil
		}
		return nil, err
	}
	f.module = module
	return module, nil
}

func (f *defaultFactory) Close() error {
	var firstErr error
	if f.module != nil {
		firstErr = f.module.Close()
		f.module = nil
	}
	if f.patterns != nil {
		if err := f.patterns.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		f.patterns = nil
	}
	return firstErr
}
