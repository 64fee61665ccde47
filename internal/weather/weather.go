package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/ekaraman/weather-reporter/internal/api"
	"github.com/ekaraman/weather-reporter/internal/config"
	"github.com/ekaraman/weather-reporter/internal/logger"
	"github.com/ekaraman/weather-reporter/internal/retry"
)

const (
	defaultMaxRetries     = 3
	defaultBaseDelay      = 1500 * time.Millisecond
	defaultAttemptTimeout = 10 * time.Second
)

// Payload is the raw parsed response from the weather API. It is persisted
// and formatted as received; the fetcher only checks that the top-level
// "main" and "weather" groups are present.
type Payload map[string]interface{}

// APIError reports that the weather API could not be queried within the
// attempt budget. It carries the last observed failure.
type APIError struct {
	Attempts int
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather API request failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// fatalError marks a failure that must not consume the remaining retry
// budget (HTTP client errors).
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Service fetches current weather from the remote API. It holds no state
// across calls beyond configuration and retry parameters.
type Service struct {
	client     *api.Client
	baseURL    string
	apiKey     string
	lang       string
	maxRetries int
	baseDelay  time.Duration
}

func NewService(cfg *config.Config) *Service {
	return NewServiceWithRetry(cfg, defaultMaxRetries, defaultBaseDelay)
}

func NewServiceWithRetry(cfg *config.Config, maxRetries int, baseDelay time.Duration) *Service {
	return &Service{
		client:     api.NewClient(defaultAttemptTimeout),
		baseURL:    cfg.WeatherAPIBaseURL,
		apiKey:     cfg.OpenWeatherAPIKey,
		lang:       cfg.WeatherLang,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// SanitizeQuery strips line breaks and surrounding whitespace from a city
// query, then drops every character that is not a letter, digit, space,
// hyphen, underscore or comma.
func SanitizeQuery(query string) string {
	query = strings.NewReplacer("\n", "", "\r", "").Replace(query)
	query = strings.TrimSpace(query)

	var b strings.Builder
	for _, ch := range query {
		switch {
		case unicode.IsLetter(ch) || unicode.IsDigit(ch):
			b.WriteRune(ch)
		case ch == ' ' || ch == '-' || ch == '_' || ch == ',':
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// Fetch queries current weather for the given city query. Server errors,
// malformed bodies and transport failures are retried with exponential
// backoff; HTTP client errors end the attempt budget immediately. When all
// attempts are spent the last failure is wrapped in an APIError.
func (s *Service) Fetch(ctx context.Context, query string) (Payload, error) {
	safeQuery := SanitizeQuery(query)

	params := url.Values{
		"q":     {safeQuery},
		"appid": {s.apiKey},
		"units": {"metric"},
		"lang":  {s.lang},
	}

	var payload Payload
	attempts := 0

	op := func(ctx context.Context) error {
		attempts++
		logger.Info("Fetching weather for %q (attempt %d/%d)", safeQuery, attempts, s.maxRetries)

		body, err := s.client.Get(ctx, s.baseURL, params)
		if err != nil {
			var statusErr *api.StatusError
			if errors.As(err, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500 {
				return &fatalError{fmt.Errorf("weather API client error: %w", err)}
			}
			return err
		}

		var data map[string]interface{}
		if err := json.Unmarshal(body, &data); err != nil {
			return fmt.Errorf("invalid JSON from weather API: %w", err)
		}
		if _, ok := data["main"]; !ok {
			return errors.New(`weather API response missing "main"`)
		}
		if _, ok := data["weather"]; !ok {
			return errors.New(`weather API response missing "weather"`)
		}

		payload = Payload(data)
		return nil
	}

	retryable := func(err error) bool {
		var fatal *fatalError
		return !errors.As(err, &fatal)
	}

	if err := retry.Do(ctx, s.maxRetries, s.baseDelay, op, retryable); err != nil {
		var fatal *fatalError
		if errors.As(err, &fatal) {
			err = fatal.err
		}
		logger.Error("Weather fetch for %q failed: %v", safeQuery, err)
		return nil, &APIError{Attempts: attempts, Err: err}
	}

	logger.Info("Successfully fetched weather for %q", safeQuery)
	return payload, nil
}
