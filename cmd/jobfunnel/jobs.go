package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/jobfunnel/internal/store"
	"github.com/jonathan/jobfunnel/internal/types"
)

var (
	listStatus string

	versionPDF  string
	versionText string
	versionID   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fetch and screening totals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.printSummary()
	},
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and manage screened jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List screened jobs, best match first",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one job with its match breakdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Set the application status (not_applied, applied, skipped, starred)",
	Args:  cobra.ExactArgs(2),
	RunE:  runJobsStatus,
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a job with its status and artifact versions",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDelete,
}

var jobsAddVersionCmd = &cobra.Command{
	Use:   "add-version ID",
	Short: "Attach a generated resume to a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsAddVersion,
}

func init() {
	jobsListCmd.Flags().StringVar(&listStatus, "status", "", "Only list jobs with this status")

	jobsAddVersionCmd.Flags().StringVar(&versionPDF, "pdf", "", "Path to the generated PDF (required)")
	jobsAddVersionCmd.Flags().StringVar(&versionText, "text", "", "Path to the plain text rendering")
	jobsAddVersionCmd.Flags().StringVar(&versionID, "version-id", "", "Version identifier (default: random UUID)")
	_ = jobsAddVersionCmd.MarkFlagRequired("pdf")

	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd, jobsStatusCmd, jobsDeleteCmd, jobsAddVersionCmd)
	rootCmd.AddCommand(statsCmd, jobsCmd)
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	var filter types.JobStatus
	if listStatus != "" {
		s, err := types.ParseStatus(listStatus)
		if err != nil {
			return err
		}
		filter = s
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	jobs, err := a.repository(cmd.Context()).GetAll(cmd.Context())
	if err != nil {
		return err
	}
	if filter != "" {
		kept := jobs[:0]
		for _, j := range jobs {
			if j.Status == filter {
				kept = append(kept, j)
			}
		}
		jobs = kept
	}
	sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].MatchScore > jobs[k].MatchScore })

	a.printer.PrintJobs(jobs)
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.repository(cmd.Context()).GetByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	a.printer.PrintJob(job)
	return nil
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	status, err := types.ParseStatus(args[1])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.locked(func() error {
		job, err := a.repository(cmd.Context()).UpdateStatus(cmd.Context(), args[0], status)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s at %s is now %s\n", job.ID, job.Role, job.Company, job.Status)
		return nil
	})
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.locked(func() error {
		if err := a.repository(cmd.Context()).DeleteJob(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}

func runJobsAddVersion(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id := versionID
	if id == "" {
		id = uuid.NewString()
	}
	v := types.ArtifactVersion{PDFPath: versionPDF, TextPath: versionText, VersionID: id}

	return a.locked(func() error {
		job, err := a.repository(cmd.Context()).AddArtifactVersion(cmd.Context(), args[0], v)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added version %s to %s (%d versions)\n", id, job.ID, len(job.Versions))
		return nil
	})
}

// locked runs fn while holding the data directory's writer lock.
func (a *app) locked(fn func() error) (err error) {
	lock, err := a.stores.Lock(a.cfg.Storage.LockTTL.Duration)
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			return fmt.Errorf("another jobfunnel process is writing to %s: %w", a.cfg.Storage.DataDir, err)
		}
		return err
	}
	defer func() {
		if relErr := lock.Release(); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn()
}

