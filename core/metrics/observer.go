package metrics

import (
	"time"

	"github.com/kilianp07/invsched/core/logger"
	"github.com/kilianp07/invsched/core/scheduler"
)

type oracleObserver struct {
	rec OracleRecorder
	log logger.Logger
}

// NewOracleObserver adapts sink to the solver's observer hook. It returns nil
// when the sink does not record oracle events. Recording errors are logged,
// never returned to the solver.
func NewOracleObserver(sink MetricsSink, log logger.Logger) scheduler.OracleObserver {
	rec, ok := sink.(OracleRecorder)
	if !ok {
		return nil
	}
	return &oracleObserver{rec: rec, log: log}
}

func (o *oracleObserver) ObserveOracle(st scheduler.OracleStats) {
	err := o.rec.RecordOracle(OracleEvent{
		Instance:       st.Instance,
		Bound:          st.Bound,
		Feasible:       st.Feasible,
		StatesExpanded: st.StatesExpanded,
		StatesPushed:   st.StatesPushed,
		FrontierPeak:   st.FrontierPeak,
		Time:           time.Now(),
	})
	if err != nil && o.log != nil {
		o.log.Warnf("record oracle event: %v", err)
	}
}
