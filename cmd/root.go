package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/invsched/config"
	"github.com/kilianp07/invsched/infra/logger"
)

// options is shared by every subcommand of one root command.
type options struct {
	cfgPath string
	cfg     *config.Config
}

// NewRootCmd builds the invsched command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "invsched",
		Short:         "Single-machine scheduling under inventory constraints",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load()
		},
	}
	root.PersistentFlags().StringVarP(&o.cfgPath, "config", "c", "", "configuration file (yaml or json); defaults apply when empty")

	root.AddCommand(
		newSolveCmd(o),
		newFeasibleCmd(o),
		newBenchCmd(o),
		newServeCmd(o),
		newDemoCmd(o),
		newHistoryCmd(o),
	)
	return root
}

func (o *options) load() error {
	var (
		cfg *config.Config
		err error
	)
	if o.cfgPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(o.cfgPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Logging.Level)
	o.cfg = cfg
	return nil
}

// Execute runs the CLI.
func Execute() error { return NewRootCmd().Execute() }
