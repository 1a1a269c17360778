package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 5
)

// Adzuna fetches postings from the Adzuna public API.
type Adzuna struct {
	client  Doer
	appID   string
	appKey  string
	country string
	baseURL string
	logger  zerolog.Logger
}

// NewAdzuna creates the Adzuna source. country defaults to "us".
func NewAdzuna(client Doer, appID, appKey, country string, logger zerolog.Logger) *Adzuna {
	if country == "" {
		country = "us"
	}
	return &Adzuna{
		client:  client,
		appID:   appID,
		appKey:  appKey,
		country: country,
		baseURL: adzunaBaseURL,
		logger:  logger,
	}
}

// Name implements Source.
func (a *Adzuna) Name() string { return SourceAdzuna }

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	RedirectURL string `json:"redirect_url"`
}

// Search iterates through result pages until the limit is met, a short page
// arrives, or the page cap is hit.
func (a *Adzuna) Search(ctx context.Context, q Query) ([]types.RawPosting, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = adzunaPageSize
	}
	pageSize := adzunaPageSize
	if limit < pageSize {
		pageSize = limit
	}

	var postings []types.RawPosting
	for page := 1; page <= adzunaMaxPages && len(postings) < limit; page++ {
		batch, err := a.fetchPage(ctx, q, page, pageSize)
		if err != nil {
			if len(postings) > 0 {
				a.logger.Warn().Err(err).Int("page", page).Msg("stopping pagination early")
				break
			}
			return nil, err
		}
		for _, r := range batch {
			if len(postings) >= limit {
				break
			}
			postings = append(postings, types.RawPosting{
				Title:       r.Title,
				Company:     r.Company.DisplayName,
				Location:    r.Location.DisplayName,
				Description: r.Description,
				URL:         r.RedirectURL,
				IsRemote:    mentionsRemote(r.Title, r.Location.DisplayName),
				Source:      SourceAdzuna,
				SearchCity:  q.Location,
				SearchTerm:  q.Term,
			})
		}
		if len(batch) < pageSize {
			break
		}
	}

	a.logger.Debug().
		Str("term", q.Term).
		Str("location", q.Location).
		Int("count", len(postings)).
		Msg("adzuna search finished")
	return postings, nil
}

func (a *Adzuna) fetchPage(ctx context.Context, q Query, page, pageSize int) ([]adzunaResult, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", a.baseURL, a.country, page)

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(pageSize))
	params.Set("what", q.Term)
	params.Set("where", q.Location)
	params.Set("sort_by", "date")
	if q.HoursOld > 0 {
		params.Set("max_days_old", strconv.Itoa((q.HoursOld+23)/24))
	}

	body, err := Get(ctx, a.client, endpoint+"?"+params.Encode(), http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, err
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &Error{URL: endpoint, Message: "failed to decode response", Cause: err}
	}
	return apiResp.Results, nil
}
