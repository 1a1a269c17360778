package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// MinContentLength is the shortest HTTP-extracted text accepted without a
// browser render. Shorter pages are usually filled in by JavaScript.
const MinContentLength = 500

// DefaultBrowserTimeout bounds a single headless render.
const DefaultBrowserTimeout = 30 * time.Second

// renderSettle is how long client-side rendering gets after the DOM is ready.
const renderSettle = 3 * time.Second

// ShouldUseBrowser reports whether extracted text is too thin to trust.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the rendered HTML of a page.
type Renderer func(ctx context.Context, url string) (string, error)

// NewBrowserRenderer returns a Renderer backed by headless Chrome, which must
// be installed. Each call starts and stops its own browser.
func NewBrowserRenderer(timeout time.Duration, logger zerolog.Logger) Renderer {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	return func(ctx context.Context, url string) (string, error) {
		logger.Debug().Str("url", url).Msg("rendering posting in headless browser")

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
		defer cancelAlloc()
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
		defer cancelBrowser()
		browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
		defer cancelTimeout()

		var html string
		err := chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body"),
			chromedp.Sleep(renderSettle),
			chromedp.ActionFunc(func(ctx context.Context) error {
				// cookie banners; nothing to click is fine
				_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
				return nil
			}),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return "", fmt.Errorf("browser rendering failed: %w", err)
		}

		logger.Debug().Str("url", url).Int("bytes", len(html)).Msg("rendered posting")
		return html, nil
	}
}
