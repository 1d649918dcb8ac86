package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the plan to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPlan(res PlanResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlan(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordRejection forwards rejections to the sinks able to record them.
func (m *MultiSink) RecordRejection(ev RejectionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RejectionRecorder); ok {
			if err := rec.RecordRejection(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSetpointAck forwards acknowledgments to the sinks able to record them.
func (m *MultiSink) RecordSetpointAck(ev SetpointAckEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SetpointAckRecorder); ok {
			if err := rec.RecordSetpointAck(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
