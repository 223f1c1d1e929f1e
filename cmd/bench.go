package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/invsched/core/scheduler"
	"github.com/kilianp07/invsched/infra/logger"
	"github.com/kilianp07/invsched/internal/bench"
)

func newBenchCmd(o *options) *cobra.Command {
	var (
		sizes     []int
		instances int
		seed      int64
		out       string
	)
	c := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the solver on random instances and write CSV statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bc := o.cfg.Bench
			if cmd.Flags().Changed("sizes") {
				bc.Sizes = sizes
			}
			if cmd.Flags().Changed("instances") {
				bc.Instances = instances
			}
			if cmd.Flags().Changed("seed") {
				bc.Seed = seed
			}
			if err := bc.Validate(); err != nil {
				return err
			}
			runner := bench.Runner{
				Solver: scheduler.NewFromConfig(o.cfg.Solver, logger.New("scheduler"), nil),
				Config: bc,
			}
			records, err := runner.Run(commandContext(cmd))
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return bench.WriteCSV(w, records)
		},
	}
	c.Flags().IntSliceVar(&sizes, "sizes", nil, "job counts to benchmark (overrides bench.sizes)")
	c.Flags().IntVar(&instances, "instances", 0, "instances per size (overrides bench.instances)")
	c.Flags().Int64Var(&seed, "seed", 0, "generator seed (overrides bench.seed)")
	c.Flags().StringVarP(&out, "out", "o", "", "CSV output path; stdout when empty")
	return c
}
