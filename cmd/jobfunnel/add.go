package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobfunnel/internal/fetch"
	"github.com/jonathan/jobfunnel/internal/ingestion"
	"github.com/jonathan/jobfunnel/internal/observability"
	"github.com/jonathan/jobfunnel/internal/pipeline"
)

var (
	addTitle           string
	addCompany         string
	addLocation        string
	addDescriptionFile string
	addRemote          bool
	addTextFile        string
	addURL             string
	addBrowser         bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job by hand, bypassing the funnel",
	Long: `Adds a posting straight to the result store. Classifier rejections become
warnings instead of blocking the job.

Three ways to add:
  --description-file with optional --title, --company, --location, --url, --remote
  --text-file        a pasted posting; title, company and location are extracted
  --url              fetch the posting page and extract it`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "Job title")
	addCmd.Flags().StringVar(&addCompany, "company", "", "Company name")
	addCmd.Flags().StringVar(&addLocation, "location", "", "Job location")
	addCmd.Flags().StringVar(&addDescriptionFile, "description-file", "", "Path to the job description")
	addCmd.Flags().BoolVar(&addRemote, "remote", false, "Job is remote")
	addCmd.Flags().StringVar(&addTextFile, "text-file", "", "Path to a pasted posting")
	addCmd.Flags().StringVar(&addURL, "url", "", "Posting URL (fetched unless --description-file is set)")
	addCmd.Flags().BoolVar(&addBrowser, "browser", false, "Render JavaScript pages with a headless browser")
	addCmd.MarkFlagsMutuallyExclusive("description-file", "text-file")
	addCmd.MarkFlagsMutuallyExclusive("url", "text-file")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	if addDescriptionFile == "" && addTextFile == "" && addURL == "" {
		return errors.New("one of --description-file, --text-file or --url is required")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var extra []pipeline.Option
	if addURL != "" && addDescriptionFile == "" {
		var render fetch.Renderer
		if addBrowser {
			render = fetch.NewBrowserRenderer(fetch.DefaultTimeout, observability.Logger("browser"))
		}
		extra = append(extra, pipeline.WithPageFetcher(a.httpClient(), render))
	}

	p, err := a.pipeline(cmd.Context(), pipelineNeeds{screener: true}, extra...)
	if err != nil {
		return err
	}

	var result *pipeline.ManualResult
	switch {
	case addDescriptionFile != "":
		description, err := ingestion.ReadTextFile(addDescriptionFile)
		if err != nil {
			return err
		}
		result, err = p.AddManual(cmd.Context(), pipeline.ManualInput{
			Title:       addTitle,
			Company:     addCompany,
			Location:    addLocation,
			Description: description,
			URL:         addURL,
			Remote:      addRemote,
		})
		if err != nil {
			return err
		}
	case addTextFile != "":
		text, err := ingestion.ReadTextFile(addTextFile)
		if err != nil {
			return err
		}
		if result, err = p.AddFromText(cmd.Context(), text); err != nil {
			return err
		}
	default:
		if result, err = p.AddFromURL(cmd.Context(), addURL); err != nil {
			return fmt.Errorf("failed to add %s: %w", addURL, err)
		}
	}

	a.printer.PrintManualResult(result)
	return nil
}
