// Package app sequences one report run: fetch weather, persist the payload,
// build the report, send it. Stage failures propagate unchanged; retries
// live inside the fetch and save implementations.
package app

import (
	"context"
	"fmt"

	"github.com/ekaraman/weather-reporter/internal/city"
	"github.com/ekaraman/weather-reporter/internal/logger"
	"github.com/ekaraman/weather-reporter/internal/weather"
)

type Fetcher interface {
	Fetch(ctx context.Context, query string) (weather.Payload, error)
}

type Store interface {
	Save(ctx context.Context, cityName string, payload weather.Payload) error
}

type Builder interface {
	Build(cityName string, payload weather.Payload) (string, error)
}

type Sender interface {
	Send(to, subject, body string) error
}

type App struct {
	Fetcher Fetcher
	Store   Store
	Builder Builder
	Sender  Sender
}

// Run produces and delivers one report for the selected city.
func (a *App) Run(ctx context.Context, c city.City, toEmail string) error {
	payload, err := a.Fetcher.Fetch(ctx, c.Query)
	if err != nil {
		return err
	}

	if err := a.Store.Save(ctx, c.Name, payload); err != nil {
		return err
	}

	reportText, err := a.Builder.Build(c.Name, payload)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s Daily Weather Report", c.Name)
	if err := a.Sender.Send(toEmail, subject, reportText); err != nil {
		return err
	}

	logger.Info("Weather report process completed successfully.")
	return nil
}
