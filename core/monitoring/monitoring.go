package monitoring

import (
	"fmt"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err != nil {
		current.CaptureException(err, tags)
	}
}

// CapturePanic reports a recovered panic value.
func CapturePanic(v any) {
	current.CapturePanic(v)
}

// Recover reports a panic to the monitor and re-panics. It must be deferred
// directly.
func Recover() {
	if r := recover(); r != nil {
		current.CapturePanic(r)
		current.Flush(2 * time.Second)
		panic(r)
	}
}

// RecoverError reports a panic to the monitor and turns it into an error
// stored in errp. It must be deferred directly.
func RecoverError(errp *error) {
	if r := recover(); r != nil {
		current.CapturePanic(r)
		if errp != nil {
			*errp = fmt.Errorf("panic: %v", r)
		}
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	current.Flush(d)
}
