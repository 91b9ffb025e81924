package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pavelanni/classroom/internal/model"
)

// DefaultMaxBytes caps the size of a fetched document.
const DefaultMaxBytes = 5 << 20

// Client fetches plain-text documents such as tutor reference code.
type Client struct {
	http     *http.Client
	maxBytes int64
	sf       singleflight.Group
}

// New creates a fetch client. A zero timeout or maxBytes selects the defaults.
func New(timeout time.Duration, maxBytes int64) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Text downloads rawURL and returns its body.
// Only absolute http and https URLs are accepted.
func (c *Client) Text(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: unsupported url %q", model.ErrInvalidArgument, rawURL)
	}

	// Concurrent requests for the same URL share one upstream fetch. The shared
	// fetch is detached from any single caller and bounded by the client timeout.
	ch := c.sf.DoChan(u.String(), func() (any, error) {
		return c.get(context.WithoutCancel(ctx), u)
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", model.ErrUpstreamFailure, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) get(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: Failed: %d", model.ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", model.ErrUpstreamFailure, err)
	}
	if int64(len(body)) > c.maxBytes {
		return "", fmt.Errorf("%w: response exceeds %d bytes", model.ErrUpstreamFailure, c.maxBytes)
	}
	slog.Debug("fetched remote text", "url", u.Redacted(), "bytes", len(body))
	return string(body), nil
}
