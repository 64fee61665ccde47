package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ekaraman/weather-reporter/internal/logger"
)

const maxLoggedBody = 200

// Client performs a single HTTP GET per call. Retry policy belongs to the
// caller; the per-attempt timeout lives here.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StatusError reports a non-2xx response from the remote API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned HTTP %d", e.Code)
}

// Get issues one GET request against baseURL with the given query parameters
// and returns the raw response body.
func (c *Client) Get(ctx context.Context, baseURL string, params url.Values) ([]byte, error) {
	reqURL := baseURL
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("API returned status code %d. Body: %s", resp.StatusCode, truncate(body))
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(body)}
	}

	return body, nil
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody])
	}
	return string(body)
}
