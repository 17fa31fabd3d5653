package config

import (
	"github.com/ravenhall/waggle/internal/waggle/options"
)

// Config is the running configuration structure of the waggle daemon.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions creates a running configuration instance based
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{opts}, nil
}
