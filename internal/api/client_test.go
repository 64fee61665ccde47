package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaraman/weather-reporter/internal/api"
)

func TestGetReturnsBody(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := api.NewClient(5 * time.Second)
	params := url.Values{"q": {"Istanbul"}, "units": {"metric"}}

	body, err := client.Get(context.Background(), srv.URL, params)
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, "Istanbul", gotQuery.Get("q"))
	assert.Equal(t, "metric", gotQuery.Get("units"))
}

func TestGetNonOKStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"client error", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"rate limited", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.code)
			}))
			defer srv.Close()

			client := api.NewClient(5 * time.Second)
			_, err := client.Get(context.Background(), srv.URL, nil)
			require.Error(t, err)

			var statusErr *api.StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.code, statusErr.Code)
		})
	}
}

func TestGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before calling

	client := api.NewClient(time.Second)
	_, err := client.Get(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var statusErr *api.StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestGetTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := api.NewClient(20 * time.Millisecond)
	_, err := client.Get(context.Background(), srv.URL, nil)
	assert.Error(t, err)
}
