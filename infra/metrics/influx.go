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

	coremetrics "github.com/kilianp07/invsched/core/metrics"
	"github.com/kilianp07/invsched/infra/logger"
)

// InfluxSink writes solver events to an InfluxDB instance using the official client.
// Solve points are written synchronously from the collector goroutine. Oracle
// points are emitted from inside the search, so they go through the batching
// write API and are flushed in the background and on Close.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	asyncAPI api.WriteAPI
	errDone  chan struct{}
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	sink := &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		asyncAPI: client.WriteAPI(org, bucket),
		errDone:  make(chan struct{}),
		log:      logger.New("influx-sink"),
	}
	errs := sink.asyncAPI.Errors()
	go func() {
		defer close(sink.errDone)
		for err := range errs {
			sink.log.Errorf("influx async write: %v", err)
		}
	}()
	return sink
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
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
		_ = sink.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve writes a solve_run point.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, solvePoint(ev))
}

// RecordOracle queues an oracle_check point. It never waits on the network;
// delivery errors are logged by the sink.
func (s *InfluxSink) RecordOracle(ev coremetrics.OracleEvent) error {
	s.asyncAPI.WritePoint(oraclePoint(ev))
	return nil
}

// Close flushes queued points and releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	<-s.errDone
	return nil
}

func solvePoint(ev coremetrics.SolveEvent) *write.Point {
	p := write.NewPointWithMeasurement("solve_run").
		AddTag("instance", ev.Instance).
		AddTag("outcome", ev.Outcome()).
		AddTag("component", "solver")
	if ev.RunID != "" {
		p = p.AddTag("run_id", ev.RunID)
	}
	p = p.AddField("jobs", ev.Jobs).
		AddField("makespan", ev.Makespan).
		AddField("oracle_calls", ev.OracleCalls).
		AddField("states_expanded", ev.StatesExpanded).
		AddField("duration_ms", float64(ev.Duration.Microseconds())/1000)
	if ev.Err != "" {
		p = p.AddField("error", ev.Err)
	}
	return p.SetTime(ev.Time)
}

func oraclePoint(ev coremetrics.OracleEvent) *write.Point {
	return write.NewPointWithMeasurement("oracle_check").
		AddTag("instance", ev.Instance).
		AddTag("feasible", strconv.FormatBool(ev.Feasible)).
		AddField("bound", ev.Bound).
		AddField("states_expanded", ev.StatesExpanded).
		AddField("states_pushed", ev.StatesPushed).
		AddField("frontier_peak", ev.FrontierPeak).
		SetTime(ev.Time)
}
