// Package wagglehook is the protocol bridge application: one JSON payload in
// on stdin, one decision out on stdout, exit code carrying the verdict.
package wagglehook

import (
	"context"
	"fmt"
	"io"

	"github.com/ravenhall/waggle/internal/waggle/service/daemon"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/bridge"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/builtin"
	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/learning/sqlite"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm"
	"github.com/ravenhall/waggle/pkg/logger"
	"github.com/ravenhall/waggle/pkg/utils/json"
)

// Run executes one bridge exchange and returns the process exit code.
// Stdout carries exactly one decision payload; all logging goes to stderr.
func Run(opts *Options, stdin io.Reader, stdout, stderr io.Writer) int {
	logger.SetOutput(stderr)
	logger.SetLevel(opts.LogLevel)

	var payload bridge.HostPayload
	if err := json.NewDecoder(stdin).Decode(&payload); err != nil {
		fmt.Fprintf(stderr, "wagglehook: failed to decode host payload: %v\n", err)
		return bridge.ExitError
	}
	if err := payload.Validate(); err != nil {
		fmt.Fprintf(stderr, "wagglehook: %v\n", err)
		return bridge.ExitError
	}

	res, err := dispatch(opts, &payload)
	if err != nil {
		fmt.Fprintf(stderr, "wagglehook: dispatch failed: %v\n", err)
		return bridge.ExitError
	}

	decision := bridge.ToHostDecision(res, payload.HookEventName)
	if err := json.NewEncoder(stdout).Encode(decision); err != nil {
		fmt.Fprintf(stderr, "wagglehook: failed to encode decision: %v\n", err)
		return bridge.ExitError
	}

	if res.Aborted {
		fmt.Fprintln(stderr, decision.Reason)
		return bridge.ExitBlock
	}
	return bridge.ExitContinue
}

// dispatch wires the per-invocation module graph and runs the executor once.
func dispatch(opts *Options, payload *bridge.HostPayload) (*hooks.ExecutionResult, error) {
	ctx := context.Background()

	var patterns learning.Store
	if opts.LearningDBPath != "" {
		store, err := sqlite.Open(opts.LearningDBPath)
		if err != nil {
			// The guard handlers matter more than pattern recording;
			// run without the store rather than failing the exchange.
			logger.Warn("[Bridge] learning store unavailable: %v", err)
		} else {
			patterns = store
			defer store.Close()
		}
	}

	swarmCfg := &swarm.Config{
		AgentID:    opts.AgentID,
		StoreType:  opts.StoreType,
		BoltDBPath: opts.BoltDBPath,
	}
	swarmModule, err := swarmCfg.Complete().New(ctx, swarm.Dependencies{Patterns: patterns})
	if err != nil {
		return nil, err
	}
	defer swarmModule.Close()

	// A short-lived process still honors triggers; the dispatcher is
	// drained before exit so fired workers finish.
	daemonModule, err := (&daemon.Config{MaxWorkers: 1}).Complete().New(ctx, daemon.Dependencies{
		Bus:     swarmModule.Bus,
		AgentID: opts.AgentID,
	})
	if err != nil {
		return nil, err
	}
	defer daemonModule.Close()

	hooksModule := (&hooks.Config{HandlerTimeout: opts.HandlerTimeout}).Complete().New()
	err = builtin.RegisterAll(hooksModule.Registry, builtin.Deps{
		Bus:        swarmModule.Bus,
		AgentID:    opts.AgentID,
		Patterns:   patterns,
		Dispatcher: daemonModule.Dispatcher,
	})
	if err != nil {
		return nil, err
	}
	policy, err := hooks.LoadPolicy(opts.PolicyFile)
	if err != nil {
		logger.Warn("[Bridge] ignoring unreadable policy file: %v", err)
	} else {
		policy.Apply(hooksModule.Registry)
	}

	hctx := bridge.ToInternalContext(payload)
	hctx.AgentID = opts.AgentID
	return hooksModule.Executor.Execute(ctx, hctx)
}
