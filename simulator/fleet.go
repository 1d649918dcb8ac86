package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/logger"
)

// setpoint mirrors the payload published by the plan service.
type setpoint struct {
	CommandID string          `json:"command_id"`
	Unit      string          `json:"unit"`
	PowerMW   decimal.Decimal `json:"power_mw"`
}

// Fleet answers the setpoints of every unit seen on the broker.
type Fleet struct {
	cfg      Config
	strategy AckStrategy
	silent   map[string]bool
	log      logger.Logger

	mu        sync.Mutex
	setpoints map[string]decimal.Decimal
	acked     int
	wg        sync.WaitGroup
	ready     chan struct{}
}

// NewFleet creates a fleet acknowledging with strategy. A nil strategy uses
// RandomAck with the latency and drop rate of cfg.
func NewFleet(cfg Config, strategy AckStrategy, log logger.Logger) (*Fleet, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strategy == nil {
		strategy = RandomAck{Delay: cfg.AckLatency, DropRate: cfg.DropRate}
	}
	silent := make(map[string]bool, len(cfg.Silent))
	for _, u := range cfg.Silent {
		silent[u] = true
	}
	return &Fleet{
		cfg:       cfg,
		strategy:  strategy,
		silent:    silent,
		log:       log,
		setpoints: make(map[string]decimal.Decimal),
		ready:     make(chan struct{}),
	}, nil
}

// Run connects to the broker and answers setpoints until ctx is done.
func (f *Fleet) Run(ctx context.Context) error {
	cli, err := newMQTTClient(f.cfg.Broker, f.cfg.ClientID)
	if err != nil {
		return err
	}
	topic := f.cfg.subscription()
	if token := cli.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) {
		f.handle(ctx, cli, msg)
	}); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}
	f.log.Infof("simulating units on %s", topic)
	close(f.ready)
	<-ctx.Done()
	f.wg.Wait()
	cli.Disconnect(250)
	return nil
}

func (f *Fleet) handle(ctx context.Context, pub Publisher, msg paho.Message) {
	if ctx.Err() != nil {
		return
	}
	var sp setpoint
	if err := json.Unmarshal(msg.Payload(), &sp); err != nil {
		f.log.Warnf("decode setpoint on %s: %v", msg.Topic(), err)
		return
	}
	if sp.Unit == "" {
		sp.Unit = unitFromTopic(f.cfg.SetpointTopic, msg.Topic())
	}
	f.mu.Lock()
	f.setpoints[sp.Unit] = sp.PowerMW
	f.mu.Unlock()
	f.log.Debugf("unit %s setpoint %s MW", sp.Unit, sp.PowerMW)
	if f.silent[sp.Unit] {
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		err := f.strategy.Ack(ctx, pub, ackTopic(f.cfg.AckTopic, sp.Unit), sp.CommandID)
		if errors.Is(err, ErrDropped) {
			f.log.Debugf("dropped ack %s for %s", sp.CommandID, sp.Unit)
			return
		}
		if err != nil {
			f.log.Warnf("ack %s for %s: %v", sp.CommandID, sp.Unit, err)
			return
		}
		f.mu.Lock()
		f.acked++
		f.mu.Unlock()
	}()
}

// Ready is closed once the fleet listens for setpoints.
func (f *Fleet) Ready() <-chan struct{} { return f.ready }

// Setpoints returns the last setpoint received by each unit.
func (f *Fleet) Setpoints() map[string]decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(f.setpoints))
	for k, v := range f.setpoints {
		out[k] = v
	}
	return out
}

// Acked returns the number of acknowledgments published.
func (f *Fleet) Acked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acked
}

// unitFromTopic extracts the unit name from topic given the setpoint format.
func unitFromTopic(format, topic string) string {
	i := strings.Index(format, "%s")
	prefix, suffix := format[:i], format[i+2:]
	if !strings.HasPrefix(topic, prefix) || !strings.HasSuffix(topic, suffix) || len(topic) < len(prefix)+len(suffix) {
		return ""
	}
	return topic[len(prefix) : len(topic)-len(suffix)]
}
