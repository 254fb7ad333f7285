// Package remote downloads logos and fonts over HTTP(S).
//
// All requests share one retrying client. Responses are read fully into
// memory with a size cap, since every caller decodes the whole body anyway.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Response size limits.
const (
	// MaxLogoBytes caps a downloaded logo image.
	MaxLogoBytes = 20 << 20 // 20 MiB
	// MaxFontBytes caps a downloaded font file.
	MaxFontBytes = 10 << 20 // 10 MiB
	// MaxTextBytes caps small text responses such as stylesheets.
	MaxTextBytes = 1 << 20 // 1 MiB
)

// ErrTooLarge is returned when a response body exceeds its limit.
var ErrTooLarge = errors.New("response too large")

// httpClient is a lazily-initialized retryablehttp client shared by every
// download. Initialized once via httpClientOnce.
var (
	httpClient     *retryablehttp.Client
	httpClientOnce sync.Once
)

// getHTTPClient returns the shared retryable HTTP client, initializing it on
// first call.
func getHTTPClient() *retryablehttp.Client {
	httpClientOnce.Do(func() {
		httpClient = retryablehttp.NewClient()
		httpClient.RetryMax = 2
		httpClient.RetryWaitMax = 2 * time.Second
		httpClient.HTTPClient.Timeout = 15 * time.Second
		httpClient.Logger = nil // suppress retryablehttp's default logging
	})
	return httpClient
}

// IsURL reports whether s names an http or https resource rather than a
// local path.
func IsURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Get downloads rawURL and returns its body. A non-empty userAgent replaces
// the client's default. Bodies longer than limit bytes fail with
// [ErrTooLarge].
func Get(ctx context.Context, rawURL, userAgent string, limit int64) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, rawURL, limit)
	}
	return body, nil
}
