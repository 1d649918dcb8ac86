package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	coremqtt "github.com/kilianp07/powerplan/core/mqtt"
)

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	m.FailUnits["broken"] = true
	m.NoAckUnits["silent"] = true

	id, err := m.SendSetpoint("gas1", decimal.NewFromInt(300))
	require.NoError(t, err)
	ok, err := m.WaitForAck(id, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.SendSetpoint("broken", decimal.NewFromInt(1))
	require.Error(t, err)

	id, err = m.SendSetpoint("silent", decimal.NewFromInt(2))
	require.NoError(t, err)
	ok, err = m.WaitForAck(id, time.Second)
	require.False(t, ok)
	require.True(t, errors.Is(err, coremqtt.ErrAckTimeout))

	sent := m.Sent()
	require.Len(t, sent, 2)
	require.True(t, sent["gas1"].Equal(decimal.NewFromInt(300)))
}
