package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/meridian/internal/table"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Meridian-Dashboard/1.0 (https://github.com/UnknownOlympus/meridian)"
)

// ErrUnexpectedStatus is returned when the remote source answers with anything but 200.
var ErrUnexpectedStatus = errors.New("remote source returned unexpected status")

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPProvider downloads a CSV order export on every Load.
type HTTPProvider struct {
	client  HTTPClient    // HTTP client for making requests
	url     string        // Address of the CSV export
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Bounds how often the export is downloaded
}

// NewHTTPProvider creates a provider with its own HTTP client.
func NewHTTPProvider(url string, timeout time.Duration, rateLimit int, log *slog.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPProvider{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewHTTPProviderWithClient allows injecting custom HTTP client.
func NewHTTPProviderWithClient(client HTTPClient, url string, limiter *rate.Limiter, log *slog.Logger) *HTTPProvider {
	return &HTTPProvider{
		client:  client,
		url:     url,
		log:     log,
		limiter: limiter,
	}
}

// Load fetches and parses the export.
func (hp *HTTPProvider) Load(ctx context.Context) (*table.Table, error) {
	if err := hp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hp.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	hp.log.DebugContext(ctx, "Fetching order export", "url", hp.url)

	resp, err := hp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		const snippet = 512
		body, _ := io.ReadAll(io.LimitReader(resp.Body, snippet))
		hp.log.ErrorContext(ctx, "Order export request failed", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	tbl, err := table.ParseCSV(resp.Body)
	if err != nil {
		return nil, err
	}

	hp.log.DebugContext(ctx, "Order export loaded", "rows", tbl.Len(), "located", tbl.Located())
	return tbl, nil
}
