package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/invsched/core/model"
	"github.com/kilianp07/invsched/core/scheduler"
	"github.com/kilianp07/invsched/infra/logger"
)

func newFeasibleCmd(o *options) *cobra.Command {
	var (
		file  string
		bound int
	)
	c := &cobra.Command{
		Use:   "feasible",
		Short: "Check whether an instance can complete within a bound",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inst, err := model.LoadInstance(file)
			if err != nil {
				return err
			}
			solver := scheduler.NewFromConfig(o.cfg.Solver, logger.New("scheduler"), nil)
			ok, err := solver.IsFeasible(inst, bound)
			if err != nil {
				return err
			}
			verdict := "infeasible"
			if ok {
				verdict = "feasible"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s within %d\n", verdict, bound)
			return err
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "instance file (yaml or json)")
	c.Flags().IntVar(&bound, "bound", 0, "makespan bound to check")
	_ = c.MarkFlagRequired("file")
	_ = c.MarkFlagRequired("bound")
	return c
}
