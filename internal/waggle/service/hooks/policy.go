package hooks

import (
	"fmt"
	"os"

	"github.com/ravenhall/waggle/pkg/logger"
	"github.com/ravenhall/waggle/pkg/utils/json"
)

// Policy is the declarative tuning file for named handlers. Names not
// present in the file keep their registered state.
type Policy struct {
	// Handlers maps handler name to enabled state.
	Handlers map[string]bool `json:"handlers"`

	// Priorities maps handler name to an execution priority override.
	Priorities map[string]int `json:"priorities,omitempty"`
}

// LoadPolicy reads a policy file. A missing file is an empty policy, so a
// deployment without one runs every registered handler.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Policy{}, nil
		}
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	return &p, nil
}

// Apply pushes the policy's rules into the registry.
func (p *Policy) Apply(r *Registry) {
	if len(p.Handlers) == 0 && len(p.Priorities) == 0 {
		return
	}
	if len(p.Handlers) > 0 {
		r.ApplyPolicy(p.Handlers)
	}
	if len(p.Priorities) > 0 {
		r.ApplyPriorities(p.Priorities)
	}
	logger.Info("[Hooks] policy applied (%d rules)", len(p.Handlers)+len(p.Priorities))
}
