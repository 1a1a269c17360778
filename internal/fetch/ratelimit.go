package fetch

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedClient wraps an http.Client with a token bucket shared by every
// source, so one fetch run never exceeds the configured request rate.
type RateLimitedClient struct {
	client      *http.Client
	rateLimiter *rate.Limiter
}

// NewRateLimitedClient allows requestsPerSecond requests with a burst of one.
func NewRateLimitedClient(requestsPerSecond float64, timeout time.Duration) *RateLimitedClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &RateLimitedClient{
		client:      &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(limit, 1),
	}
}

// Do waits for a token (or the request context) and then sends the request.
func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.rateLimiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.client.Do(req)
}
