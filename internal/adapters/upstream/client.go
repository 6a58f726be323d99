// internal/adapters/upstream/client.go
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_proxy/internal/adapters/observability"
	"review_proxy/internal/domain"
)

// maxBody caps how much of an upstream response is buffered.
const maxBody = 32 << 20

type Client struct {
	hc *http.Client
	rl *rate.Limiter
}

// New builds a client. rps <= 0 disables client-side rate limiting.
func New(timeout time.Duration, rps int) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), rps)
	}
	return &Client{
		hc: &http.Client{Timeout: timeout},
		rl: lim,
	}
}

// Get issues exactly one GET to endpoint with params merged into any query
// the endpoint already carries. A 2xx JSON body is returned as-is; everything
// else is wrapped in domain.ErrUpstream.
func (c *Client) Get(ctx context.Context, dataset, endpoint string, params url.Values) (json.RawMessage, error) {
	target, err := withParams(endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, dataset, err)
	}

	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, dataset, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, dataset, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "review-proxy/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("upstream", dataset, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, dataset, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("upstream", dataset, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s: bad status %d: %s",
			domain.ErrUpstream, dataset, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", domain.ErrUpstream, dataset, err)
	}
	if !json.Valid(bytes.TrimSpace(body)) {
		return nil, fmt.Errorf("%w: %s: response is not JSON", domain.ErrUpstream, dataset)
	}
	return json.RawMessage(body), nil
}

func withParams(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported upstream URL %q", endpoint)
	}
	if len(params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for k, vs := range params {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
