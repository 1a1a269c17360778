package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/jobfunnel/internal/fetch"
	"github.com/rs/zerolog"
)

var (
	// ErrHTTPRequestFailed is returned when the page could not be downloaded
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be extracted
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures FromURL.
type URLOptions struct {
	Client fetch.Doer
	// Render, when set, is used for pages whose HTTP text is too short.
	Render fetch.Renderer
	Logger zerolog.Logger
}

// Page is the cleaned text of a posting page.
type Page struct {
	URL      string
	Platform fetch.Platform
	Text     string
	Rendered bool
}

// FromURL downloads a posting page and extracts its text with platform-specific
// selectors. Thin pages are re-rendered in a headless browser when a renderer
// is configured; a failed render keeps the HTTP text.
func FromURL(ctx context.Context, urlStr string, opts URLOptions) (*Page, error) {
	platform := fetch.DetectPlatform(urlStr)
	logger := opts.Logger.With().Str("url", urlStr).Str("platform", string(platform)).Logger()

	body, err := fetch.Get(ctx, opts.Client, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug().Int("bytes", len(body)).Msg("fetched page")

	text, err := fetch.ExtractText(string(body), platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	page := &Page{URL: urlStr, Platform: platform}

	if opts.Render != nil && fetch.ShouldUseBrowser(text) {
		logger.Debug().Int("chars", len(text)).Msg("page text too short, rendering in browser")
		html, renderErr := opts.Render(ctx, urlStr)
		switch {
		case renderErr != nil:
			logger.Warn().Err(renderErr).Msg("browser rendering failed, using HTTP content")
		default:
			rendered, extractErr := fetch.ExtractText(html, platform)
			if extractErr != nil {
				logger.Warn().Err(extractErr).Msg("failed to extract rendered content")
			} else {
				text = rendered
				page.Rendered = true
			}
		}
	}

	page.Text = CleanText(text)
	if page.Text == "" {
		return nil, fmt.Errorf("%w: no text found at %s", ErrContentExtractionFailed, urlStr)
	}
	return page, nil
}
