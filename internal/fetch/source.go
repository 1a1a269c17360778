package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

// Source names accepted in search.sites.
const (
	SourceLinkedIn = "linkedin"
	SourceAdzuna   = "adzuna"
)

// Query is one (term, location) search against a source.
type Query struct {
	Term     string
	Location string
	// Limit caps the number of postings returned.
	Limit int
	// HoursOld restricts results to postings younger than this.
	HoursOld int
	Format   DescriptionFormat
}

// Source searches one job board.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) ([]types.RawPosting, error)
}

// SourceConfig carries what NewSources needs to build every enabled source.
type SourceConfig struct {
	Sites         []string
	ScraperAPIKey string
	AdzunaAppID   string
	AdzunaAppKey  string
	AdzunaCountry string
	Client        Doer
	Logger        zerolog.Logger
}

// NewSources builds the enabled sources in the order they are listed.
func NewSources(cfg SourceConfig) ([]Source, error) {
	sources := make([]Source, 0, len(cfg.Sites))
	for _, site := range cfg.Sites {
		switch strings.ToLower(site) {
		case SourceLinkedIn:
			sources = append(sources, NewLinkedIn(cfg.Client, cfg.ScraperAPIKey, cfg.Logger))
		case SourceAdzuna:
			sources = append(sources, NewAdzuna(cfg.Client, cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry, cfg.Logger))
		default:
			return nil, fmt.Errorf("unknown source %q", site)
		}
	}
	return sources, nil
}
