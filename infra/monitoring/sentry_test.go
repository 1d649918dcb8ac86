package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/config"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
)

type captureTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *captureTransport) Configure(sentry.ClientOptions) {}
func (c *captureTransport) SendEvent(ev *sentry.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}
func (c *captureTransport) Flush(time.Duration) bool { return true }
func (c *captureTransport) FlushWithContext(_ context.Context) bool {
	return true
}
func (c *captureTransport) Close() {}

func TestNewSentryMonitor_NoDSN(t *testing.T) {
	mon, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	require.IsType(t, coremon.NopMonitor{}, mon)
}

func TestSentryMonitor_Capture(t *testing.T) {
	tr := &captureTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: "https://key@example.com/1", Transport: tr})
	require.NoError(t, err)
	mon := &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}

	mon.CaptureException(nil, nil)
	mon.CaptureException(errors.New("boom"), nil)
	mon.CaptureException(errors.New("tagged"), map[string]string{"module": "mqtt"})
	mon.CapturePanic("kaboom")
	mon.Flush(time.Second)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.Len(t, tr.events, 3)
	require.Equal(t, "mqtt", tr.events[1].Tags["module"])
}
