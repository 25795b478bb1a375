package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NewHTTPFetcher returns a Fetcher that GETs a URL with the given timeout and
// refuses bodies larger than maxBytes.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) Fetcher {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		body := io.Reader(resp.Body)
		if maxBytes > 0 {
			body = io.LimitReader(resp.Body, maxBytes+1)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		if maxBytes > 0 && int64(len(data)) > maxBytes {
			return nil, fmt.Errorf("document larger than %d bytes", maxBytes)
		}
		return data, nil
	}
}
