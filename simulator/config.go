// Package simulator runs a set of fake powerplants on an MQTT broker. Each
// unit receives its setpoint and acknowledges it following an AckStrategy.
package simulator

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultSetpointTopic = "powerplant/%s/setpoint"
	DefaultAckTopic      = "powerplant/%s/ack"
)

// Config holds parameters for the simulator.
type Config struct {
	Broker   string
	ClientID string
	// SetpointTopic and AckTopic are formats with a single %s replaced by
	// the unit name.
	SetpointTopic string
	AckTopic      string
	AckLatency    time.Duration
	DropRate      float64
	// Silent lists units that never acknowledge.
	Silent []string
}

// SetDefaults fills the topics and client ID.
func (c *Config) SetDefaults() {
	if c.SetpointTopic == "" {
		c.SetpointTopic = DefaultSetpointTopic
	}
	if c.AckTopic == "" {
		c.AckTopic = DefaultAckTopic
	}
	if c.ClientID == "" {
		c.ClientID = fmt.Sprintf("powerplan-sim-%d", time.Now().UnixNano())
	}
}

// Validate checks the broker and topic formats.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if strings.Count(c.SetpointTopic, "%s") != 1 || strings.Count(c.AckTopic, "%s") != 1 {
		return fmt.Errorf("topics must contain exactly one %%s")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop rate must be between 0 and 1")
	}
	return nil
}

// subscription returns the wildcard topic matching every unit's setpoints.
func (c Config) subscription() string {
	return fmt.Sprintf(c.SetpointTopic, "+")
}
