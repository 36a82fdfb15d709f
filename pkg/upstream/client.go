// Package upstream provides the HTTP client for the tenders.guru API with
// retry, backoff and error classification.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/tenders-api/pkg/logging"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for upstream operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_upstream_requests_total",
		Help: "Total upstream HTTP attempts by status",
	}, []string{"status"})

	upstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tenders_upstream_request_duration_seconds",
		Help:    "Duration of a page fetch including retries",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_upstream_errors_total",
		Help: "Total failed page fetches by error class",
	}, []string{"class"})
)

// DefaultBaseURL is the public tenders.guru endpoint for Polish tenders.
const DefaultBaseURL = "https://tenders.guru/api/pl/"

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "tenders-api/1.0"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root; "tenders" is resolved against it.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// RequestTimeout bounds a single attempt.
	RequestTimeout time.Duration

	// Retry
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      DefaultUserAgent,
		RequestTimeout: 120 * time.Second,
		MaxRetries:     3,
		RetryWaitMin:   2 * time.Second,
		RetryWaitMax:   8 * time.Second,
	}
}

// Client fetches tender pages from tenders.guru.
type Client struct {
	http    *retryablehttp.Client
	baseURL *url.URL
	config  Config
	logger  zerolog.Logger
}

// New creates a new upstream client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive (got %s)", cfg.RequestTimeout)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	raw := cfg.BaseURL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	logger = logging.WithComponent(logger, logging.ComponentUpstream)

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	rc.Logger = leveledLogger{logger: logger}
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.CheckRetry = checkRetry
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.RequestLogHook = requestLogHook
	rc.ResponseLogHook = responseLogHook
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    rc,
		baseURL: base,
		config:  cfg,
		logger:  logger,
	}, nil
}

// pageURL builds <base>/tenders?page=<n>.
func (c *Client) pageURL(page int) string {
	ref := &url.URL{
		Path:     "tenders",
		RawQuery: url.Values{"page": []string{strconv.Itoa(page)}}.Encode(),
	}
	return c.baseURL.ResolveReference(ref).String()
}

// FetchPage fetches and decodes one page of tenders.
// Every failure is returned as *Error.
func (c *Client) FetchPage(ctx context.Context, page int) ([]Item, error) {
	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(page), nil)
	if err != nil {
		return nil, c.fail(&Error{Class: ErrorClassClient, Page: page, Err: fmt.Errorf("create request: %w", err)})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", c.baseURL.String())
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			drain(resp.Body)
		}
		return nil, c.fail(&Error{Class: classifyErr(err), Page: page, Err: err})
	}
	defer drain(resp.Body)

	if class := classifyStatus(resp.StatusCode); class != "" {
		return nil, c.fail(&Error{
			StatusCode: resp.StatusCode,
			Class:      class,
			Page:       page,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status),
		})
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, c.fail(&Error{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassDecode,
			Page:       page,
			Err:        fmt.Errorf("decode body: %w", err),
		})
	}

	c.logger.Debug().
		Int("page", page).
		Int("items", len(payload.Data)).
		Msg("Fetched upstream page")

	return payload.Data, nil
}

func (c *Client) fail(e *Error) error {
	upstreamErrorsTotal.WithLabelValues(string(e.Class)).Inc()
	c.logger.Debug().
		Int("page", e.Page).
		Int("status", e.StatusCode).
		Str("error_class", string(e.Class)).
		Err(e.Err).
		Msg("Upstream page failed")
	return e
}

// drain discards the rest of a body so the connection can be reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<20))
	_ = body.Close()
}

// IsRetryable reports whether err is an upstream error of a transient class.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return shouldRetry(e.Class)
}
