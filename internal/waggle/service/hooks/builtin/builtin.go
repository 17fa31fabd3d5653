// Package builtin ships the handlers registered out of the box by both the
// bridge binary and the daemon. Deployments prune them through the policy
// file rather than by editing code.
package builtin

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/ravenhall/waggle/internal/waggle/service/daemon"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/service"
	"github.com/ravenhall/waggle/pkg/logger"
)

// Handler names, referenced by the policy file.
const (
	NameCommandGuard     = "dangerous-command-guard"
	NamePatternRecorder  = "pattern-learned-recorder"
	NameTaskTrigger      = "task-trigger-forwarder"
	NameSessionAnnouncer = "session-announcer"
)

// Deps are the collaborators the builtin handlers close over. Any field may
// be nil; handlers needing a missing collaborator register anyway and no-op,
// so the policy file sees a stable name set.
type Deps struct {
	Bus        service.MessageBus
	AgentID    string
	Patterns   learning.Store
	Dispatcher *daemon.Dispatcher
}

// dangerousCommands are refused outright on pre-command dispatch. The list
// targets irreversible host damage, not policy enforcement.
var dangerousCommands = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+(-[a-zA-Z]*r[a-zA-Z]*f|-[a-zA-Z]*f[a-zA-Z]*r)\s+/(\s|$)`),
	regexp.MustCompile(`\bmkfs(\.[a-z0-9]+)?\b`),
	regexp.MustCompile(`\bdd\s+[^|;]*of=/dev/`),
	regexp.MustCompile(`:\(\)\s*\{\s*:\|:&\s*\}\s*;`),
	regexp.MustCompile(`\bchmod\s+(-[a-zA-Z]*R[a-zA-Z]*\s+)?777\s+/(\s|$)`),
}

// RegisterAll installs every builtin handler into the registry.
func RegisterAll(reg *hooks.Registry, deps Deps) error {
	regs := []struct {
		event    entity.Event
		priority int
		opts     hooks.RegisterOptions
		handler  hooks.Handler
	}{
		{
			event:    entity.EventPreCommand,
			priority: 100,
			opts:     hooks.RegisterOptions{Name: NameCommandGuard, Critical: true},
			handler:  commandGuard,
		},
		{
			event:    entity.EventPatternLearned,
			priority: 10,
			opts:     hooks.RegisterOptions{Name: NamePatternRecorder},
			handler:  patternRecorder(deps.Patterns),
		},
		{
			event:    entity.EventPostTask,
			priority: 10,
			opts:     hooks.RegisterOptions{Name: NameTaskTrigger},
			handler:  taskTrigger(deps.Dispatcher),
		},
		{
			event:    entity.EventSessionStart,
			priority: 0,
			opts:     hooks.RegisterOptions{Name: NameSessionAnnouncer},
			handler:  sessionAnnouncer(deps.Bus, deps.AgentID),
		},
	}
	for _, r := range regs {
		opts := r.opts
		if _, err := reg.Register(r.event, r.handler, r.priority, &opts); err != nil {
			return fmt.Errorf("failed to register builtin handler %s: %w", r.opts.Name, err)
		}
	}
	return nil
}

// commandGuard aborts shell commands that would wreck the host.
func commandGuard(_ context.Context, hctx *entity.Context) (*entity.Result, error) {
	if hctx.Command == nil {
		return entity.OK(), nil
	}
	for _, re := range dangerousCommands {
		if re.MatchString(hctx.Command.Raw) {
			logger.Warn("[Hooks] blocking dangerous command: %s", hctx.Command.Raw)
			return entity.Block(fmt.Sprintf("command matches dangerous pattern %q", re.String())), nil
		}
	}
	return entity.OK(), nil
}

// patternRecorder persists learned patterns announced through the hook
// stream into the local learning store.
func patternRecorder(store learning.Store) hooks.Handler {
	return func(ctx context.Context, hctx *entity.Context) (*entity.Result, error) {
		if store == nil {
			return entity.OK(), nil
		}
		strategy, _ := hctx.Metadata["strategy"].(string)
		if strategy == "" {
			return entity.OK(), nil
		}
		domain, _ := hctx.Metadata["domain"].(string)
		quality, _ := hctx.Metadata["quality"].(float64)
		p := &learning.Pattern{
			ID:        uuid.NewString(),
			Strategy:  strategy,
			Domain:    domain,
			Quality:   quality,
			CreatedAt: time.Now(),
		}
		if err := store.Save(ctx, p); err != nil {
			return entity.Failed(err), nil
		}
		return &entity.Result{
			Success: true,
			Data:    &entity.ResultData{Values: map[string]interface{}{"pattern_id": p.ID}},
		}, nil
	}
}

// taskTrigger scans completed task descriptions for background-work hints
// and dispatches matching daemon workers. Over-capacity refusals are
// reported, not treated as dispatch failures.
func taskTrigger(d *daemon.Dispatcher) hooks.Handler {
	return func(_ context.Context, hctx *entity.Context) (*entity.Result, error) {
		if d == nil || hctx.Task == nil {
			return entity.OK(), nil
		}
		triggers := daemon.DetectTriggers(hctx.Task.Description)
		dispatched := make([]string, 0, len(triggers))
		for _, tr := range triggers {
			if tr.Confidence < 0.2 {
				continue
			}
			st, err := d.Dispatch(tr.Type, map[string]string{
				"prompt":  hctx.Task.Description,
				"task_id": hctx.Task.ID,
			})
			if err != nil {
				logger.Warn("[Hooks] trigger %s not dispatched: %v", tr.Type, err)
				continue
			}
			dispatched = append(dispatched, st.ID)
		}
		if len(dispatched) == 0 {
			return entity.OK(), nil
		}
		return &entity.Result{
			Success: true,
			Data:    &entity.ResultData{Values: map[string]interface{}{"workers": dispatched}},
		}, nil
	}
}

// sessionAnnouncer refreshes this agent's swarm registration when a host
// session starts.
func sessionAnnouncer(bus service.MessageBus, agentID string) hooks.Handler {
	return func(ctx context.Context, hctx *entity.Context) (*entity.Result, error) {
		if bus == nil || agentID == "" {
			return entity.OK(), nil
		}
		if _, err := bus.RegisterAgent(ctx, agentID, ""); err != nil {
			return entity.Failed(err), nil
		}
		return entity.OK(), nil
	}
}
