package scenarios

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/invsched/app"
	coremetrics "github.com/kilianp07/invsched/core/metrics"
	"github.com/kilianp07/invsched/core/scheduler"
	"github.com/kilianp07/invsched/infra/logger"
	"github.com/kilianp07/invsched/infra/metrics"
)

// RunScenario solves the scenario through the service with a private
// Prometheus registry and checks the expected outcome.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	solver := scheduler.New(scheduler.Options{
		MaxStates: sc.MaxStates,
		Observer:  coremetrics.NewOracleObserver(sink, logger.NopLogger{}),
	})
	svc := app.NewWithDeps(app.Deps{Solver: solver, Sink: sink})

	_, res, err := svc.Solve(context.Background(), &sc.Instance)
	if cerr := svc.Close(); cerr != nil {
		t.Fatalf("close: %v", cerr)
	}

	switch {
	case sc.Expected.Error != "":
		if err == nil || !strings.Contains(err.Error(), sc.Expected.Error) {
			t.Fatalf("scenario %s expected error containing %q, got %v", sc.Name, sc.Expected.Error, err)
		}
		return
	case err != nil:
		t.Fatalf("scenario %s: %v", sc.Name, err)
	case sc.Expected.Infeasible:
		if res.Feasible {
			t.Errorf("scenario %s expected infeasible, got makespan %d", sc.Name, res.Makespan)
		}
	default:
		if !res.Feasible {
			t.Fatalf("scenario %s expected makespan %d, got infeasible", sc.Name, *sc.Expected.Makespan)
		}
		if res.Makespan != *sc.Expected.Makespan {
			t.Errorf("scenario %s expected makespan %d, got %d", sc.Name, *sc.Expected.Makespan, res.Makespan)
		}
		if err := res.Schedule.Validate(&sc.Instance); err != nil {
			t.Errorf("scenario %s witness: %v", sc.Name, err)
		}
	}

	if n, err := testutil.GatherAndCount(reg, "invsched_solves_total"); err != nil || n != 1 {
		t.Errorf("scenario %s: expected one solve series, got %d (%v)", sc.Name, n, err)
	}
	if n, err := testutil.GatherAndCount(reg, "invsched_oracle_calls_total"); err != nil || n == 0 {
		t.Errorf("scenario %s: no oracle calls recorded (%v)", sc.Name, err)
	}
}
