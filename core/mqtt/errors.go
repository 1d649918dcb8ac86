package mqtt

import "errors"

// ErrAckTimeout reports a setpoint the unit did not acknowledge in time.
var ErrAckTimeout = errors.New("setpoint not acknowledged before timeout")
