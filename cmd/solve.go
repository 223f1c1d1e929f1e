package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/invsched/app"
	"github.com/kilianp07/invsched/core/model"
	"github.com/kilianp07/invsched/infra/logger"
	"github.com/kilianp07/invsched/pkg/export"
)

func newSolveCmd(o *options) *cobra.Command {
	var (
		file    string
		format  string
		publish bool
	)
	c := &cobra.Command{
		Use:   "solve",
		Short: "Compute the minimal makespan of an instance file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			inst, err := model.LoadInstance(file)
			if err != nil {
				return err
			}
			return o.solveAndWrite(cmd, inst, f, publish)
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "instance file (yaml or json)")
	c.Flags().StringVar(&format, "format", "text", "output format: text, json or csv")
	c.Flags().BoolVar(&publish, "publish", false, "publish the report on the mqtt results topic")
	_ = c.MarkFlagRequired("file")
	return c
}

func newDemoCmd(o *options) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "demo",
		Short: "Solve the built-in four-job sample instance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return o.solveAndWrite(cmd, model.SampleInstance(), f, false)
		},
	}
	c.Flags().StringVar(&format, "format", "text", "output format: text, json or csv")
	return c
}

// solveAndWrite solves inst through the service so the run is journaled
// and recorded in metrics, then writes the report to stdout.
func (o *options) solveAndWrite(cmd *cobra.Command, inst *model.Instance, f export.Format, publish bool) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := *o.cfg
	if !publish {
		cfg.MQTT.Broker = ""
	}
	svc, err := app.New(&cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)

	runID, res, err := svc.Solve(ctx, inst)
	if err != nil {
		return fmt.Errorf("solve %s: %w", inst.Name, err)
	}
	if publish {
		if err := svc.PublishResult(runID, res); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}
	return export.Write(cmd.OutOrStdout(), f, res)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

// commandContext returns the command context or a background one when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
