package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// ErrDropped is returned by strategies that chose not to acknowledge.
var ErrDropped = errors.New("ack dropped")

// Publisher is the subset of paho.Client used to send acks.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// AckStrategy defines how a unit acknowledges setpoints.
type AckStrategy interface {
	Ack(ctx context.Context, pub Publisher, topic, commandID string) error
}

// AutoAck sends an ACK after an optional fixed delay.
type AutoAck struct {
	Delay time.Duration
}

// Ack implements AckStrategy.
func (a AutoAck) Ack(ctx context.Context, pub Publisher, topic, commandID string) error {
	if !wait(ctx, a.Delay) {
		return ctx.Err()
	}
	return publishAck(pub, topic, commandID)
}

// RandomAck drops acknowledgments with the configured probability and
// waits for the specified delay before sending.
type RandomAck struct {
	Delay    time.Duration
	DropRate float64
}

// Ack implements AckStrategy.
func (r RandomAck) Ack(ctx context.Context, pub Publisher, topic, commandID string) error {
	if r.DropRate > 0 && rand.Float64() < r.DropRate {
		return ErrDropped
	}
	if !wait(ctx, r.Delay) {
		return ctx.Err()
	}
	return publishAck(pub, topic, commandID)
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func publishAck(pub Publisher, topic, commandID string) error {
	payload, err := json.Marshal(struct {
		CommandID string `json:"command_id"`
	}{CommandID: commandID})
	if err != nil {
		return err
	}
	token := pub.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("ack publish timeout on %s", topic)
	}
	return token.Error()
}

// ackTopic returns the acknowledgment topic of unit.
func ackTopic(format, unit string) string {
	return fmt.Sprintf(format, unit)
}
