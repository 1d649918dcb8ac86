package config

import (
	"fmt"
	"net"
)

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	// Address is the listen address of the API, e.g. ":8888".
	Address string `json:"address"`
	// LogsToken protects the plan log endpoint when set.
	LogsToken string `json:"logs_token"`
	// ShutdownSeconds bounds graceful shutdown.
	ShutdownSeconds int `json:"shutdown_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8888"
	}
	if c.ShutdownSeconds <= 0 {
		c.ShutdownSeconds = 5
	}
}

// Validate checks the listen address.
func (c ServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("server: invalid address %q: %w", c.Address, err)
	}
	return nil
}
