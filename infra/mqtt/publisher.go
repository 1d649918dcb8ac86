package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	coremqtt "github.com/kilianp07/powerplan/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher records setpoints in memory. Units listed in FailUnits fail
// to publish and units in NoAckUnits never acknowledge.
type MockPublisher struct {
	Messages   map[string]decimal.Decimal
	FailUnits  map[string]bool
	NoAckUnits map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Messages:   make(map[string]decimal.Decimal),
		FailUnits:  make(map[string]bool),
		NoAckUnits: make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// SendSetpoint records the setpoint or returns an error if configured to fail.
func (m *MockPublisher) SendSetpoint(unit string, powerMW decimal.Decimal) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUnits[unit] {
		return "", fmt.Errorf("publish failed")
	}
	m.Messages[unit] = powerMW
	commandID := fmt.Sprintf("cmd-%s", unit)
	m.AckResults[commandID] = !m.NoAckUnits[unit]
	return commandID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockPublisher) WaitForAck(commandID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[commandID]
	m.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("unknown command %s", commandID)
	}
	if !ok {
		return false, fmt.Errorf("command %s: %w", commandID, coremqtt.ErrAckTimeout)
	}
	return true, nil
}

// Sent returns a copy of the recorded setpoints.
func (m *MockPublisher) Sent() map[string]decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(m.Messages))
	for k, v := range m.Messages {
		out[k] = v
	}
	return out
}
