package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/infra/logger"
)

// InfluxSink writes production plans to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

var (
	_ coremetrics.RejectionRecorder   = (*InfluxSink)(nil)
	_ coremetrics.SetpointAckRecorder = (*InfluxSink)(nil)
)

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlan writes one production_plan point followed by one unit_setpoint
// point per allocation.
func (s *InfluxSink) RecordPlan(res coremetrics.PlanResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(res.Allocations)+1)
	points = append(points, write.NewPointWithMeasurement("production_plan").
		AddTag("plan_id", res.PlanID).
		AddField("load_mw", res.Load.InexactFloat64()).
		AddField("served_mw", model.TotalPower(res.Allocations).InexactFloat64()).
		AddField("unserved_mw", res.Unserved.InexactFloat64()).
		AddField("cost_euros", model.TotalCost(res.Allocations).InexactFloat64()).
		AddField("duration_ms", float64(res.Duration.Microseconds())/1000).
		SetTime(res.Time))
	for _, a := range res.Allocations {
		points = append(points, write.NewPointWithMeasurement("unit_setpoint").
			AddTag("plan_id", res.PlanID).
			AddTag("unit", a.Name).
			AddTag("fuel", a.Class.String()).
			AddField("power_mw", a.P.InexactFloat64()).
			AddField("cost_euros", a.Cost.InexactFloat64()).
			SetTime(res.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordRejection writes a refused request.
func (s *InfluxSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_rejected").
		AddTag("plan_id", ev.PlanID).
		AddField("reason", ev.Reason).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSetpointAck writes the acknowledgment result of one setpoint.
func (s *InfluxSink) RecordSetpointAck(ev coremetrics.SetpointAckEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("setpoint_ack").
		AddTag("plan_id", ev.PlanID).
		AddTag("unit", ev.Unit).
		AddTag("acknowledged", strconv.FormatBool(ev.Acknowledged)).
		AddField("power_mw", ev.PowerMW.InexactFloat64()).
		AddField("latency_ms", float64(ev.Latency.Microseconds())/1000).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
