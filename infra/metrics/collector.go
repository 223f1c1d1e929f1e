package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/invsched/core/metrics"
	"github.com/kilianp07/invsched/infra/logger"
	"github.com/kilianp07/invsched/internal/eventbus"
)

// StartSolveCollector subscribes to the bus and records every solve event in
// sink. It stops when ctx is canceled or the bus is closed. The returned
// channel is closed once the collector has exited.
func StartSolveCollector(ctx context.Context, bus *eventbus.TypedBus[coremetrics.SolveEvent], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordSolve(ev); err != nil {
					log.Warnf("record solve %s: %v", ev.RunID, err)
				}
			}
		}
	}()
	return done
}
