package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/jobfunnel/internal/config"
	"github.com/jonathan/jobfunnel/internal/db"
	"github.com/jonathan/jobfunnel/internal/fetch"
	"github.com/jonathan/jobfunnel/internal/llm"
	"github.com/jonathan/jobfunnel/internal/observability"
	"github.com/jonathan/jobfunnel/internal/pipeline"
	"github.com/jonathan/jobfunnel/internal/repository"
	"github.com/jonathan/jobfunnel/internal/screening"
	"github.com/jonathan/jobfunnel/internal/stats"
	"github.com/jonathan/jobfunnel/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds what every command builds from the configuration.
type app struct {
	cfg     *config.Config
	creds   config.Credentials
	stores  *store.Stores
	tracker *stats.Tracker
	printer *observability.Printer
	logger  zerolog.Logger

	mirror *db.DB
	client llm.Client
}

// loadConfig reads --config. The default file is optional; a file named on
// the command line must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit := cmd.Flags().Changed("config")
	if !explicit {
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			cfg := config.Default()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
	}
	return config.LoadConfig(configPath)
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := observability.Logger("cli")
	stores := store.Open(cfg.Storage.DataDir, observability.Logger("store"))
	return &app{
		cfg:     cfg,
		creds:   config.LoadCredentials(nil),
		stores:  stores,
		tracker: stats.NewTracker(stores.Layout.Stats(), stores.Statuses, observability.Logger("stats")),
		printer: observability.NewPrinter(cmd.OutOrStdout()),
		logger:  logger,
	}, nil
}

// connectMirror opens the Postgres mirror when DATABASE_URL is set. The CSV
// stores stay authoritative, so a failed connection only logs a warning.
func (a *app) connectMirror(ctx context.Context) {
	if a.creds.DatabaseURL == "" || a.mirror != nil {
		return
	}
	database, err := db.Connect(ctx, a.creds.DatabaseURL)
	if err != nil {
		a.logger.Warn().Err(err).Msg("continuing without database mirror")
		return
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		a.logger.Warn().Err(err).Msg("continuing without database mirror")
		return
	}
	a.mirror = database
}

func (a *app) classifier(ctx context.Context) (llm.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	key, err := a.creds.ClassifierKey(a.cfg.Screening)
	if err != nil {
		return nil, err
	}
	s := a.cfg.Screening
	client, err := llm.NewClient(ctx, llm.NewConfig(llm.Provider(s.Provider), s.Model, s.ExtractionModel), key)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}
	a.client = client
	return client, nil
}

func (a *app) httpClient() *fetch.RateLimitedClient {
	return fetch.NewRateLimitedClient(a.cfg.Search.RequestsPerSecond, fetch.DefaultTimeout)
}

func (a *app) sources() ([]fetch.Source, error) {
	if err := a.creds.RequireFetch(a.cfg.Search); err != nil {
		return nil, err
	}
	return fetch.NewSources(fetch.SourceConfig{
		Sites:         a.cfg.Search.Sites,
		ScraperAPIKey: a.creds.ScraperAPIKey,
		AdzunaAppID:   a.creds.AdzunaAppID,
		AdzunaAppKey:  a.creds.AdzunaAppKey,
		AdzunaCountry: a.cfg.Search.AdzunaCountry,
		Client:        a.httpClient(),
		Logger:        observability.Logger("fetch"),
	})
}

// pipelineNeeds says which collaborators a command uses, so each command
// only checks the credentials it needs.
type pipelineNeeds struct {
	sources  bool
	screener bool
}

func (a *app) pipeline(ctx context.Context, needs pipelineNeeds, extra ...pipeline.Option) (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{
		pipeline.WithLockTTL(a.cfg.Storage.LockTTL.Duration),
		pipeline.WithSearch(pipeline.Search{
			Locations:       a.cfg.Search.Locations(),
			Terms:           a.cfg.Search.Terms,
			ResultsPerQuery: a.cfg.Search.ResultsPerCity,
			Format:          fetch.DescriptionFormat(a.cfg.Search.DescriptionFormat),
			MaxLookbackDays: a.cfg.Search.MaxLookbackDays,
		}),
		pipeline.WithProgress(func(e pipeline.ProgressEvent) {
			a.logger.Debug().Str("step", e.Step).Msg(e.Message)
		}),
	}

	if needs.sources {
		sources, err := a.sources()
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithSources(sources...))
	}
	if needs.screener {
		client, err := a.classifier(ctx)
		if err != nil {
			return nil, err
		}
		screener := screening.NewScreener(client, screening.OptionsFromConfig(a.cfg.Screening), observability.Logger("screening"))
		opts = append(opts, pipeline.WithScreener(screener))

		a.connectMirror(ctx)
		if a.mirror != nil {
			opts = append(opts, pipeline.WithMirror(a.mirror))
		}
	}

	return pipeline.New(a.stores, a.tracker, observability.Logger("pipeline"), append(opts, extra...)...), nil
}

func (a *app) repository(ctx context.Context) *repository.Repository {
	var opts []repository.Option
	a.connectMirror(ctx)
	if a.mirror != nil {
		opts = append(opts, repository.WithMirror(a.mirror))
	}
	return repository.New(a.stores, a.cfg.Storage.CacheTTL.Duration, observability.Logger("repository"), opts...)
}

func (a *app) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Debug().Err(err).Msg("failed to close classifier client")
		}
	}
	if a.mirror != nil {
		a.mirror.Close()
	}
}
