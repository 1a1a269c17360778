package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobfunnel/internal/observability"
	"github.com/jonathan/jobfunnel/internal/pipeline"
	"github.com/jonathan/jobfunnel/internal/scheduler"
)

var watchNow bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run fetch and screen on the watch.schedule cron until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "Run once immediately before waiting for the schedule")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.pipeline(cmd.Context(), pipelineNeeds{sources: true, screener: true})
	if err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		result, err := p.Run(ctx, pipeline.FetchOptions{})
		if result != nil && result.Screen != nil {
			a.printer.PrintScreenResult(result.Screen)
		}
		return err
	}

	s, err := scheduler.New(a.cfg.Watch.Schedule, job, observability.Logger("scheduler"))
	if err != nil {
		return err
	}
	return s.Run(cmd.Context(), watchNow)
}
