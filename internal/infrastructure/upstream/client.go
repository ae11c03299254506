// Package upstream holds the shared HTTP loop used by every external
// nutrition and model client: rate limiting, bounded retries with
// exponential backoff, and status classification.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/platewise/backend/internal/domain"
)

// RetryBaseDelay is the first backoff interval; it doubles on each attempt.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 30 * time.Second
	maxBodyBytes       = 1 << 20
)

// Options configures a Client
type Options struct {
	Name        string
	Timeout     time.Duration
	RatePerSec  float64 // 0 disables limiting
	Burst       int
	MaxAttempts int
	UserAgent   string
	MaxBody     int64 // bytes; defaults to 1 MiB
}

// Client executes requests against one upstream service
type Client struct {
	name        string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	maxAttempts int
	maxBody     int64
	userAgent   string
	logger      *zap.Logger
}

// New creates a client from opts
func New(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}

	maxBody := opts.MaxBody
	if maxBody <= 0 {
		maxBody = maxBodyBytes
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "Platewise/1.0"
	}

	return &Client{
		name:        opts.Name,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: limiter,
		maxAttempts: attempts,
		maxBody:     maxBody,
		userAgent:   userAgent,
		logger:      logger.Named(opts.Name),
	}
}

// RequestFunc builds a fresh request for each attempt
type RequestFunc func(ctx context.Context) (*http.Request, error)

// Do executes the request built by build and returns the response body.
// Transport errors, 429 and 5xx are retried; 404 maps to domain.ErrNotFound;
// other non-2xx statuses fail immediately with domain.ErrUpstreamFailure.
func (c *Client) Do(ctx context.Context, build RequestFunc) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug("request error", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
			if !c.sleep(ctx, attempt) {
				return nil, lastErr
			}
			continue
		}

		body, err := readLimitedBody(resp.Body, c.maxBody)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamFailure, err)
			if !c.sleep(ctx, attempt) {
				return nil, lastErr
			}
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.logger.Debug("retryable status",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
			if !c.sleep(ctx, attempt) {
				return nil, lastErr
			}
		default:
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrUpstreamFailure, resp.StatusCode, truncate(body, 200))
		}
	}

	c.logger.Debug("all retries failed", zap.Error(lastErr))
	return nil, lastErr
}

// sleep waits out the backoff for attempt unless it was the last one or ctx
// ends first. Returns false when the caller should stop retrying.
func (c *Client) sleep(ctx context.Context, attempt int) bool {
	if attempt >= c.maxAttempts {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(exponentialBackoff(attempt)):
		return true
	}
}

// exponentialBackoff returns RetryBaseDelay * 2^(attempt-1)
func exponentialBackoff(attempt int) time.Duration {
	return RetryBaseDelay * time.Duration(1<<(attempt-1))
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
