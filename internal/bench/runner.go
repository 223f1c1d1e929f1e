package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/kilianp07/invsched/core/scheduler"
)

// Config describes a benchmark campaign.
type Config struct {
	// Sizes lists the job counts to benchmark.
	Sizes []int `json:"sizes"`
	// Instances is the number of random instances per size.
	Instances int   `json:"instances"`
	Seed      int64 `json:"seed"`
	GenParams `json:",squash"`
}

// DefaultConfig returns the default campaign. Configuration loading decodes
// over it, so an explicit zero seed or capacity is kept.
func DefaultConfig() Config {
	return Config{
		Sizes:     []int{4, 8, 12},
		Instances: 20,
		Seed:      777,
		GenParams: GenParams{MaxProcessing: 9, MaxRelease: 10, MaxDelta: 5, Capacity: 10},
	}
}

// SetDefaults fills the fields whose zero value cannot describe a campaign.
// Seed and the generator bounds other than MaxProcessing accept zero.
func (c *Config) SetDefaults() {
	def := DefaultConfig()
	if len(c.Sizes) == 0 {
		c.Sizes = def.Sizes
	}
	if c.Instances == 0 {
		c.Instances = def.Instances
	}
	if c.MaxProcessing == 0 {
		c.MaxProcessing = def.MaxProcessing
	}
}

// Validate checks the campaign parameters.
func (c Config) Validate() error {
	for _, n := range c.Sizes {
		if n < 0 || n > 64 {
			return fmt.Errorf("bench size %d out of range [0,64]", n)
		}
	}
	if c.Instances < 0 {
		return fmt.Errorf("bench instances must be >= 0")
	}
	if c.MaxProcessing < 1 || c.MaxRelease < 0 || c.MaxDelta < 0 || c.Capacity < 0 {
		return fmt.Errorf("bench generator parameters must be non-negative with max_processing >= 1")
	}
	return nil
}

// Record aggregates the runs for one instance size.
type Record struct {
	Jobs      int
	Instances int
	Feasible  int
	Failed    int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanMean float64
	MakespanStd  float64

	OracleCallsMean    float64
	StatesExpandedMean float64
}

// Runner solves generated instances with a fixed solver.
type Runner struct {
	Solver *scheduler.Solver
	Config Config
}

// Run benchmarks every configured size. Instances are generated from
// Seed+size so a size's sample does not depend on the other sizes.
// Errors from individual solves, such as hitting the state limit, are
// counted in Failed rather than aborting the campaign.
func (r Runner) Run(ctx context.Context) ([]Record, error) {
	records := make([]Record, 0, len(r.Config.Sizes))
	for _, n := range r.Config.Sizes {
		rec, err := r.RunSize(ctx, n)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// RunSize benchmarks instances with n jobs.
func (r Runner) RunSize(ctx context.Context, n int) (Record, error) {
	rng := rand.New(rand.NewSource(r.Config.Seed + int64(n)))
	rec := Record{Jobs: n, Instances: r.Config.Instances}
	var times, makespans, calls, states []float64
	for i := 0; i < r.Config.Instances; i++ {
		if err := ctx.Err(); err != nil {
			return rec, fmt.Errorf("bench size %d instance %d: %w", n, i, err)
		}
		inst := RandomInstance(fmt.Sprintf("bench-%d-%d", n, i), n, r.Config.GenParams, rng)
		start := time.Now()
		res, err := r.Solver.Solve(inst)
		dur := time.Since(start)
		if err != nil {
			rec.Failed++
			continue
		}
		times = append(times, float64(dur.Microseconds())/1000.0)
		calls = append(calls, float64(res.OracleCalls))
		states = append(states, float64(res.StatesExpanded))
		if res.Feasible {
			rec.Feasible++
			makespans = append(makespans, float64(res.Makespan))
		}
	}
	ts := CalcStats(times)
	ms := CalcStats(makespans)
	rec.TimeBestMs, rec.TimeMeanMs, rec.TimeStdMs = ts.Best, ts.Mean, ts.Std
	rec.MakespanMean, rec.MakespanStd = ms.Mean, ms.Std
	rec.OracleCallsMean = CalcStats(calls).Mean
	rec.StatesExpandedMean = CalcStats(states).Mean
	return rec, nil
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	header := []string{
		"jobs", "instances", "feasible", "failed",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_mean", "makespan_std",
		"oracle_calls_mean", "states_expanded_mean",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Jobs), strconv.Itoa(r.Instances), strconv.Itoa(r.Feasible), strconv.Itoa(r.Failed),
			ftoa(r.TimeBestMs), ftoa(r.TimeMeanMs), ftoa(r.TimeStdMs),
			ftoa(r.MakespanMean), ftoa(r.MakespanStd),
			ftoa(r.OracleCallsMean), ftoa(r.StatesExpandedMean),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) }
