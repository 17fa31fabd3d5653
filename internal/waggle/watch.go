package waggle

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks"
	"github.com/ravenhall/waggle/pkg/logger"
)

// PolicyWatcher hot-reloads the hook policy file into the registry. It
// watches the containing directory, not the file, so editors that replace
// the file atomically still trigger a reload.
type PolicyWatcher struct {
	path     string
	registry *hooks.Registry
	watcher  *fsnotify.Watcher
}

func NewPolicyWatcher(path string, registry *hooks.Registry) (*PolicyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &PolicyWatcher{
		path:     path,
		registry: registry,
		watcher:  w,
	}, nil
}

// Run blocks until ctx is cancelled or the watcher closes.
func (p *PolicyWatcher) Run(ctx context.Context) {
	logger.Info("[Waggled] watching hook policy at %s", p.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.reload()
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("[Waggled] policy watcher error: %v", err)
		}
	}
}

func (p *PolicyWatcher) reload() {
	policy, err := hooks.LoadPolicy(p.path)
	if err != nil {
		logger.Warn("[Waggled] policy reload failed, keeping previous state: %v", err)
		return
	}
	policy.Apply(p.registry)
	logger.Info("[Waggled] hook policy reloaded from %s", p.path)
}

// Close stops the underlying fs watcher.
func (p *PolicyWatcher) Close() error {
	return p.watcher.Close()
}
