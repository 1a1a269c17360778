package fetch

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/jobfunnel/internal/types"
	"github.com/rs/zerolog"
)

const (
	linkedInSearchURL  = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedInPostingURL = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/"
	linkedInViewURL    = "https://www.linkedin.com/jobs/view/"
	scraperAPIURL      = "http://api.scraperapi.com"
	linkedInPageSize   = 10
	linkedInMaxStart   = 1000
)

var linkedInJobID = regexp.MustCompile(`(\d{6,})`)

// LinkedIn searches the LinkedIn guest jobs API. Requests are routed through
// ScraperAPI when an API key is configured.
type LinkedIn struct {
	client     Doer
	apiKey     string
	searchURL  string
	postingURL string
	proxyURL   string
	logger     zerolog.Logger
}

// NewLinkedIn creates the LinkedIn source.
func NewLinkedIn(client Doer, scraperAPIKey string, logger zerolog.Logger) *LinkedIn {
	return &LinkedIn{
		client:     client,
		apiKey:     scraperAPIKey,
		searchURL:  linkedInSearchURL,
		postingURL: linkedInPostingURL,
		proxyURL:   scraperAPIURL,
		logger:     logger,
	}
}

// Name implements Source.
func (l *LinkedIn) Name() string { return SourceLinkedIn }

// Search pages through search results until the limit is reached or a page
// comes back empty, then loads each posting's description.
func (l *LinkedIn) Search(ctx context.Context, q Query) ([]types.RawPosting, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = linkedInPageSize
	}

	var postings []types.RawPosting
	seen := make(map[string]bool)

	for start := 0; len(postings) < limit && start < linkedInMaxStart; start += linkedInPageSize {
		page, err := l.searchPage(ctx, q, start)
		if err != nil {
			if len(postings) > 0 {
				l.logger.Warn().Err(err).Int("start", start).Msg("stopping pagination early")
				break
			}
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		added := 0
		for _, card := range page {
			if seen[card.id] || len(postings) >= limit {
				continue
			}
			seen[card.id] = true
			postings = append(postings, l.complete(ctx, card, q))
			added++
		}
		if added == 0 {
			break
		}
	}

	l.logger.Debug().
		Str("term", q.Term).
		Str("location", q.Location).
		Int("count", len(postings)).
		Msg("linkedin search finished")
	return postings, nil
}

type linkedInCard struct {
	id       string
	title    string
	company  string
	location string
}

func (l *LinkedIn) searchPage(ctx context.Context, q Query, start int) ([]linkedInCard, error) {
	params := url.Values{}
	params.Set("keywords", q.Term)
	params.Set("location", q.Location)
	params.Set("start", strconv.Itoa(start))
	if q.HoursOld > 0 {
		params.Set("f_TPR", fmt.Sprintf("r%d", q.HoursOld*3600))
	}

	body, err := Get(ctx, l.client, l.wrap(l.searchURL+"?"+params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	return parseLinkedInCards(string(body))
}

// complete fills the description. A failed description fetch keeps the card
// with an empty description, which screening later skips.
func (l *LinkedIn) complete(ctx context.Context, card linkedInCard, q Query) types.RawPosting {
	posting := types.RawPosting{
		Title:      card.title,
		Company:    card.company,
		Location:   card.location,
		URL:        linkedInViewURL + card.id,
		Source:     SourceLinkedIn,
		SearchCity: q.Location,
		SearchTerm: q.Term,
	}

	body, err := Get(ctx, l.client, l.wrap(l.postingURL+card.id), nil)
	if err != nil {
		l.logger.Warn().Err(err).Str("job_id", card.id).Msg("failed to load description")
	} else if description, err := parseLinkedInDescription(string(body), q.Format); err != nil {
		l.logger.Warn().Err(err).Str("job_id", card.id).Msg("failed to parse description")
	} else {
		posting.Description = description
	}

	posting.IsRemote = mentionsRemote(posting.Title, posting.Location, posting.Description)
	return posting
}

// wrap routes a target URL through ScraperAPI.
func (l *LinkedIn) wrap(target string) string {
	if l.apiKey == "" {
		return target
	}
	params := url.Values{}
	params.Set("api_key", l.apiKey)
	params.Set("country", "us")
	params.Set("keep_headers", "true")
	params.Set("url", target)
	return l.proxyURL + "?" + params.Encode()
}

func parseLinkedInCards(html string) ([]linkedInCard, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	var cards []linkedInCard
	doc.Find("div.base-search-card, div.job-search-card").Each(func(_ int, s *goquery.Selection) {
		id := linkedInCardID(s)
		if id == "" {
			return
		}
		cards = append(cards, linkedInCard{
			id:       id,
			title:    strings.TrimSpace(s.Find("h3").First().Text()),
			company:  strings.TrimSpace(s.Find("h4").First().Text()),
			location: strings.TrimSpace(s.Find("span.job-search-card__location").First().Text()),
		})
	})
	return cards, nil
}

func linkedInCardID(s *goquery.Selection) string {
	if urn, ok := s.Attr("data-entity-urn"); ok {
		if m := linkedInJobID.FindString(urn); m != "" {
			return m
		}
	}
	href, ok := s.Find("a.base-card__full-link, a").First().Attr("href")
	if !ok {
		return ""
	}
	if idx := strings.Index(href, "?"); idx >= 0 {
		href = href[:idx]
	}
	matches := linkedInJobID.FindAllString(href, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}

func parseLinkedInDescription(html string, format DescriptionFormat) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse posting page: %w", err)
	}
	markup := doc.Find(".show-more-less-html__markup").First()
	if markup.Length() == 0 {
		markup = doc.Find(".description__text").First()
	}
	if markup.Length() == 0 {
		return "", nil
	}
	inner, err := markup.Html()
	if err != nil {
		return "", fmt.Errorf("failed to read description markup: %w", err)
	}
	return ConvertDescription(inner, format)
}

func mentionsRemote(fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), "remote") {
			return true
		}
	}
	return false
}
