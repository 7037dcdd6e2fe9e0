package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/nftadvisor/valuation-go/internal/config"
)

// Client wraps the upstream HTTP transport. Every request carries the
// configured timeout and passes through a shared rate limiter so a burst
// of valuation requests cannot hammer the upstreams.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

func NewClient(cfg config.UpstreamConfig, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "nft-valuation-advisor/1.0")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 20
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = rps
	}

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// getJSON performs a rate-limited GET and decodes the response into out.
// A non-2xx status is returned as an error carrying the status code.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Get(url)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return &statusError{code: resp.StatusCode(), url: url}
	}
	return nil
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s", e.code, e.url)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}
