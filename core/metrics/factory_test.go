package metrics_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powerplan/core/factory"
	metrics "github.com/kilianp07/powerplan/core/metrics"
	_ "github.com/kilianp07/powerplan/infra/metrics"
)

type countingSink struct{ plans int }

func (s *countingSink) RecordPlan(metrics.PlanResult) error {
	s.plans++
	return nil
}

func TestSinkTypes_Builtins(t *testing.T) {
	types := metrics.SinkTypes()
	for _, name := range []string{"influx", "nop", "prometheus"} {
		assert.Contains(t, types, name)
	}
}

func TestNewMetricsSink(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	multi, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "expected MultiSink, got %T", s)
	assert.Len(t, multi.Sinks, 2)
}

func TestNewMetricsSink_Unknown(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "graphite"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"graphite"`)
	assert.Contains(t, err.Error(), "prometheus")
}

func TestRegisterMetricsSink_Custom(t *testing.T) {
	sink := &countingSink{}
	require.NoError(t, metrics.RegisterMetricsSink("counting", func(map[string]any) (metrics.MetricsSink, error) {
		return sink, nil
	}))
	assert.Error(t, metrics.RegisterMetricsSink("counting", func(map[string]any) (metrics.MetricsSink, error) {
		return sink, nil
	}))

	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "counting"}, {Type: "nop"}})
	require.NoError(t, err)
	require.NoError(t, s.RecordPlan(metrics.PlanResult{PlanID: "p1"}))
	assert.Equal(t, 1, sink.plans)
}

func TestRegisterMetricsSink_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	require.NoError(t, metrics.RegisterMetricsSink("broken", func(map[string]any) (metrics.MetricsSink, error) {
		return nil, boom
	}))
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "broken"}})
	assert.ErrorIs(t, err, boom)
}

func TestMetricsConfig_YAML(t *testing.T) {
	data := `sinks:
  - type: nop
  - type: influx
    conf:
      url: http://127.0.0.1:1
      token: t
      org: o
      bucket: b
`
	var cfg metrics.Config
	require.NoError(t, yaml.Unmarshal([]byte(data), &cfg))
	require.Len(t, cfg.Sinks, 2)
	assert.Equal(t, "influx", cfg.Sinks[1].Type)
	assert.Equal(t, "o", cfg.Sinks[1].Conf["org"])

	s, err := metrics.NewMetricsSink(cfg.Sinks)
	require.NoError(t, err)
	assert.IsType(t, &metrics.MultiSink{}, s)
}
