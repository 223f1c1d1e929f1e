package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/invsched/config"
	corejournal "github.com/kilianp07/invsched/core/journal"
	coremetrics "github.com/kilianp07/invsched/core/metrics"
	"github.com/kilianp07/invsched/core/model"
	coremon "github.com/kilianp07/invsched/core/monitoring"
	coremqtt "github.com/kilianp07/invsched/core/mqtt"
	"github.com/kilianp07/invsched/core/scheduler"
	"github.com/kilianp07/invsched/infra/journal"
	"github.com/kilianp07/invsched/infra/logger"
	"github.com/kilianp07/invsched/infra/metrics"
	"github.com/kilianp07/invsched/infra/monitoring"
	"github.com/kilianp07/invsched/infra/mqtt"
	"github.com/kilianp07/invsched/internal/eventbus"
)

// Deps are the collaborators of a Service. Nil fields get no-op defaults.
type Deps struct {
	Solver    *scheduler.Solver
	Sink      coremetrics.MetricsSink
	Journal   corejournal.Store
	Transport coremqtt.Transport
	Topics    coremqtt.Topics
	Logger    logger.Logger
	// PromAddr, when set, exposes the default Prometheus registry in Run.
	PromAddr string
	// APIAddr, when set, serves the HTTP API in Run.
	APIAddr  string
	APIToken string
}

// Service runs solves and records them in the configured metrics sinks
// and journal. With a transport it also answers requests over MQTT.
type Service struct {
	solver    *scheduler.Solver
	sink      coremetrics.MetricsSink
	journal   corejournal.Store
	transport coremqtt.Transport
	topics    coremqtt.Topics
	log       logger.Logger
	promAddr  string
	apiAddr   string
	apiToken  string

	bus       *eventbus.TypedBus[coremetrics.SolveEvent]
	stop      context.CancelFunc
	collector <-chan struct{}
}

// New creates a Service from the configuration. The MQTT client is only
// created when a broker is configured.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	if cfg.Sentry.Enabled() {
		mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		coremon.Init(mon)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := journal.NewStore(cfg.Journal)
	if err != nil {
		closeQuietly(sink)
		return nil, fmt.Errorf("journal: %w", err)
	}
	var transport coremqtt.Transport
	if cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			closeQuietly(sink)
			_ = store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		transport = client
	}

	deps := Deps{
		Solver:    scheduler.NewFromConfig(cfg.Solver, logger.New("scheduler"), coremetrics.NewOracleObserver(sink, log)),
		Sink:      sink,
		Journal:   store,
		Transport: transport,
		Topics:    coremqtt.Topics{Prefix: cfg.MQTT.TopicPrefix},
		Logger:    log,
		APIAddr:   cfg.API.Addr,
		APIToken:  cfg.API.Token,
	}
	if cfg.Metrics.HasSink("prometheus") {
		deps.PromAddr = cfg.Metrics.PrometheusAddr
	}
	return NewWithDeps(deps), nil
}

// NewWithDeps creates a Service from explicit collaborators.
func NewWithDeps(d Deps) *Service {
	if d.Solver == nil {
		d.Solver = scheduler.New(scheduler.Options{})
	}
	if d.Sink == nil {
		d.Sink = coremetrics.NopSink{}
	}
	if d.Journal == nil {
		d.Journal = corejournal.NopStore{}
	}
	if d.Logger == nil {
		d.Logger = logger.NopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	bus := eventbus.NewTypedBuffered[coremetrics.SolveEvent](64)
	s := &Service{
		solver:    d.Solver,
		sink:      d.Sink,
		journal:   d.Journal,
		transport: d.Transport,
		topics:    d.Topics,
		log:       d.Logger,
		promAddr:  d.PromAddr,
		apiAddr:   d.APIAddr,
		apiToken:  d.APIToken,
		bus:       bus,
		stop:      cancel,
	}
	s.collector = metrics.StartSolveCollector(ctx, bus, d.Sink, d.Logger)
	return s
}

// Solve runs the makespan search and records the run. The returned run ID
// identifies the journal record.
func (s *Service) Solve(ctx context.Context, inst *model.Instance) (string, scheduler.Result, error) {
	runID := uuid.NewString()
	if err := ctx.Err(); err != nil {
		return runID, scheduler.Result{}, err
	}
	res, err := s.solver.Solve(inst)
	if err != nil {
		s.log.Errorf("solve %s failed: %v", runID, err)
		if !errors.Is(err, model.ErrInvalidInstance) {
			coremon.CaptureException(err, map[string]string{"module": "scheduler", "run_id": runID})
		}
	} else {
		s.log.Infow("solve finished", map[string]any{
			"run_id":       runID,
			"instance":     res.Instance,
			"feasible":     res.Feasible,
			"makespan":     res.Makespan,
			"oracle_calls": res.OracleCalls,
		})
	}
	ev := coremetrics.NewSolveEvent(runID, res, err)
	if s.bus.Publish(ev) == 0 {
		s.log.Warnf("solve event %s not delivered to metrics", runID)
	}
	if jerr := s.journal.Append(ctx, corejournal.FromEvent(ev)); jerr != nil {
		s.log.Errorf("journal append %s: %v", runID, jerr)
		coremon.CaptureException(jerr, map[string]string{"module": "journal"})
	}
	return runID, res, err
}

// Feasible answers a single feasibility check without recording a run.
func (s *Service) Feasible(inst *model.Instance, bound int) (bool, error) {
	return s.solver.IsFeasible(inst, bound)
}

// Journal returns the run store.
func (s *Service) Journal() corejournal.Store { return s.journal }

// Close stops the metrics collector and releases sinks, journal and
// transport.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.collector
	s.stop()
	var errs []error
	if s.transport != nil {
		errs = append(errs, s.transport.Close())
	}
	errs = append(errs, s.journal.Close())
	if c, ok := s.sink.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}

func closeQuietly(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}
