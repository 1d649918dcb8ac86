package dispatch

import "fmt"

// LookAhead selects how the allocator treats the minimum output of the next
// unit of the same fuel class.
type LookAhead string

const (
	// LookAheadCapped runs a unit at pmax whenever the remaining load exceeds
	// it, whatever the next unit needs to start.
	LookAheadCapped LookAhead = "capped"
	// LookAheadReserve holds back the next unit's pmin when the current unit
	// can still run within its bounds with that reserve.
	LookAheadReserve LookAhead = "reserve"
)

// DefaultPrecision is the number of decimal places kept on assigned power.
const DefaultPrecision int32 = 1

// Config defines dispatch-related settings.
type Config struct {
	Precision         *int32    `json:"precision"`
	LookAhead         LookAhead `json:"lookahead"`
	PublishSetpoints  bool      `json:"publish_setpoints"`
	AckTimeoutSeconds int       `json:"ack_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Precision == nil {
		p := DefaultPrecision
		c.Precision = &p
	}
	if c.LookAhead == "" {
		c.LookAhead = LookAheadCapped
	}
	if c.AckTimeoutSeconds <= 0 {
		c.AckTimeoutSeconds = 5
	}
}

// Validate checks the configured values.
func (c Config) Validate() error {
	if c.LookAhead != LookAheadCapped && c.LookAhead != LookAheadReserve && c.LookAhead != "" {
		return fmt.Errorf("unknown lookahead policy %s", c.LookAhead)
	}
	if c.Precision != nil && (*c.Precision < 0 || *c.Precision > 6) {
		return fmt.Errorf("precision must be between 0 and 6")
	}
	return nil
}

// Places returns the rounding precision, falling back to DefaultPrecision.
func (c Config) Places() int32 {
	if c.Precision == nil {
		return DefaultPrecision
	}
	return *c.Precision
}
