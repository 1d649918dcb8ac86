package logger

// Logger is the logging facade used across the planner. Implementations tag
// every entry with the component that created the logger.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields, e.g. request payloads.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
