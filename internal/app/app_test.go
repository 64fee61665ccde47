package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaraman/weather-reporter/internal/app"
	"github.com/ekaraman/weather-reporter/internal/city"
	"github.com/ekaraman/weather-reporter/internal/weather"
)

type stages struct {
	calls []string

	fetchErr error
	saveErr  error
	buildErr error
	sendErr  error

	sentTo      string
	sentSubject string
	sentBody    string
	savedCity   string
}

func (s *stages) Fetch(ctx context.Context, query string) (weather.Payload, error) {
	s.calls = append(s.calls, "fetch")
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return weather.Payload{"main": map[string]interface{}{}}, nil
}

func (s *stages) Save(ctx context.Context, cityName string, payload weather.Payload) error {
	s.calls = append(s.calls, "save")
	s.savedCity = cityName
	return s.saveErr
}

func (s *stages) Build(cityName string, payload weather.Payload) (string, error) {
	s.calls = append(s.calls, "build")
	if s.buildErr != nil {
		return "", s.buildErr
	}
	return "report body", nil
}

func (s *stages) Send(to, subject, body string) error {
	s.calls = append(s.calls, "send")
	s.sentTo = to
	s.sentSubject = subject
	s.sentBody = body
	return s.sendErr
}

func newApp(s *stages) *app.App {
	return &app.App{Fetcher: s, Store: s, Builder: s, Sender: s}
}

var istanbul = city.City{ID: 34, Name: "Istanbul", Query: "Istanbul,TR"}

func TestRunSequencesStages(t *testing.T) {
	s := &stages{}

	err := newApp(s).Run(context.Background(), istanbul, "user@example.com")
	require.NoError(t, err)

	assert.Equal(t, []string{"fetch", "save", "build", "send"}, s.calls)
	assert.Equal(t, "Istanbul", s.savedCity)
	assert.Equal(t, "user@example.com", s.sentTo)
	assert.Equal(t, "Istanbul Daily Weather Report", s.sentSubject)
	assert.Equal(t, "report body", s.sentBody)
}

func TestRunPropagatesStageErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*stages) error
		wantCalls []string
	}{
		{
			"fetch fails",
			func(s *stages) error { s.fetchErr = errors.New("fetch boom"); return s.fetchErr },
			[]string{"fetch"},
		},
		{
			"save fails",
			func(s *stages) error { s.saveErr = errors.New("save boom"); return s.saveErr },
			[]string{"fetch", "save"},
		},
		{
			"build fails",
			func(s *stages) error { s.buildErr = errors.New("build boom"); return s.buildErr },
			[]string{"fetch", "save", "build"},
		},
		{
			"send fails",
			func(s *stages) error { s.sendErr = errors.New("send boom"); return s.sendErr },
			[]string{"fetch", "save", "build", "send"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stages{}
			want := tt.setup(s)

			err := newApp(s).Run(context.Background(), istanbul, "user@example.com")
			require.Error(t, err)

			// The stage error must cross the orchestrator unchanged.
			assert.ErrorIs(t, err, want)
			assert.Equal(t, tt.wantCalls, s.calls, "later stages must not run")
		})
	}
}
