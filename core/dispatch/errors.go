package dispatch

import "fmt"

// ValidationError reports a request that cannot be planned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// InvalidUnitError reports a powerplant whose characteristics make its cost
// undefined.
type InvalidUnitError struct {
	Unit   string
	Reason string
}

func (e *InvalidUnitError) Error() string {
	return fmt.Sprintf("invalid powerplant %s: %s", e.Unit, e.Reason)
}
