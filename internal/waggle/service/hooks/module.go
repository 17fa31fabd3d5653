package hooks

import (
	"time"

	"github.com/ravenhall/waggle/pkg/logger"
)

// Config holds the configuration for the hooks module.
type Config struct {
	// HandlerTimeout bounds each handler invocation.
	HandlerTimeout time.Duration `json:"handler_timeout,omitempty" mapstructure:"handler-timeout"`
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = DefaultHandlerTimeout
	}
	return CompletedConfig{c}
}

// Module bundles the registry and executor for one process.
type Module struct {
	Registry *Registry
	Executor *Executor
}

// New creates the hooks module.
func (c CompletedConfig) New() *Module {
	registry := NewRegistry()
	executor := NewExecutor(registry, (&ExecutorConfig{HandlerTimeout: c.HandlerTimeout}).Complete())
	logger.Debug("[Hooks] module initialized (handler_timeout=%s)", c.HandlerTimeout)
	return &Module{
		Registry: registry,
		Executor: executor,
	}
}
