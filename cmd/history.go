package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	corejournal "github.com/kilianp07/invsched/core/journal"
	"github.com/kilianp07/invsched/infra/journal"
)

func newHistoryCmd(o *options) *cobra.Command {
	var (
		instance     string
		since        time.Duration
		feasibleOnly bool
	)
	c := &cobra.Command{
		Use:   "history",
		Short: "List journaled solve runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.cfg.Journal.Backend == "none" {
				return fmt.Errorf("journal disabled: set journal.backend to jsonl or sqlite")
			}
			store, err := journal.NewStore(o.cfg.Journal)
			if err != nil {
				return err
			}
			defer store.Close()

			q := corejournal.Query{Instance: instance, FeasibleOnly: feasibleOnly}
			if since > 0 {
				q.Start = time.Now().Add(-since)
			}
			recs, err := store.Query(commandContext(cmd), q)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tRUN\tINSTANCE\tJOBS\tMAKESPAN\tORACLE CALLS\tDURATION MS")
			for _, r := range recs {
				makespan := "infeasible"
				switch {
				case r.Error != "":
					makespan = "error"
				case r.Feasible:
					makespan = fmt.Sprint(r.Makespan)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%.3f\n",
					r.Timestamp.Format(time.RFC3339), r.RunID, r.Instance, r.Jobs, makespan, r.OracleCalls, r.DurationMS)
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVar(&instance, "instance", "", "only runs of this instance")
	c.Flags().DurationVar(&since, "since", 0, "only runs newer than this duration")
	c.Flags().BoolVar(&feasibleOnly, "feasible", false, "only feasible runs")
	return c
}
