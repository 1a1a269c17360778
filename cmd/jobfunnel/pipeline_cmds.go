package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/jobfunnel/internal/pipeline"
)

var fetchDays int

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch new postings into today's daily batch",
	Long: `Searches every configured location and term, drops postings already in the
master store, and writes the rest to data/daily/jobs_YYYY-MM-DD.csv.

Without --days the lookback is the number of days since the last fetch,
capped at search.max_lookback_days.`,
	RunE: runFetch,
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen every daily batch and keep the postings that pass",
	RunE:  runScreen,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, then screen",
	RunE:  runRun,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "Lookback window in days (default: since last fetch)")
	runCmd.Flags().IntVar(&fetchDays, "days", 0, "Lookback window in days (default: since last fetch)")

	rootCmd.AddCommand(fetchCmd, screenCmd, runCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.pipeline(cmd.Context(), pipelineNeeds{sources: true})
	if err != nil {
		return err
	}
	result, err := p.Fetch(cmd.Context(), pipeline.FetchOptions{Days: fetchDays})
	if err != nil {
		return err
	}
	a.printer.PrintFetchResult(result)
	return nil
}

func runScreen(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.pipeline(cmd.Context(), pipelineNeeds{screener: true})
	if err != nil {
		return err
	}
	result, err := p.Screen(cmd.Context())
	if result != nil {
		a.printer.PrintScreenResult(result)
	}
	if err != nil {
		return err
	}
	return a.printSummary()
}

func runRun(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.pipeline(cmd.Context(), pipelineNeeds{sources: true, screener: true})
	if err != nil {
		return err
	}
	result, err := p.Run(cmd.Context(), pipeline.FetchOptions{Days: fetchDays})
	if result != nil {
		if result.Fetch != nil {
			a.printer.PrintFetchResult(result.Fetch)
		}
		if result.Screen != nil {
			a.printer.PrintScreenResult(result.Screen)
		}
	}
	if err != nil {
		return err
	}
	return a.printSummary()
}

func (a *app) printSummary() error {
	summary, err := a.tracker.Summary()
	if err != nil {
		return err
	}
	a.printer.PrintStats(summary)
	return nil
}
