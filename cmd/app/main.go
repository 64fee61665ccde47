package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/ekaraman/weather-reporter/internal/app"
	"github.com/ekaraman/weather-reporter/internal/city"
	"github.com/ekaraman/weather-reporter/internal/config"
	"github.com/ekaraman/weather-reporter/internal/db"
	"github.com/ekaraman/weather-reporter/internal/email"
	"github.com/ekaraman/weather-reporter/internal/logger"
	"github.com/ekaraman/weather-reporter/internal/report"
	"github.com/ekaraman/weather-reporter/internal/scheduler"
	"github.com/ekaraman/weather-reporter/internal/weather"
)

var errPromptCancelled = errors.New("input cancelled")

func main() {
	logger.Init()

	daily := flag.Bool("daily", false, "send the report every day instead of once")
	at := flag.String("at", "07:00", "time of day (HH:MM) for -daily")
	cityID := flag.Int("city", 0, "city id, skips the interactive prompt")
	to := flag.String("to", "", "recipient email address, skips the interactive prompt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("[ERROR] Invalid configuration: %v\n", err)
		logger.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	cities, err := city.Load(cfg.CitiesFilePath)
	if err != nil {
		fmt.Printf("[ERROR] Could not load city list: %v\n", err)
		logger.Error("City list error: %v", err)
		os.Exit(1)
	}

	// One scanner for every interactive prompt; a second scanner over
	// os.Stdin could buffer ahead and swallow the next prompt's line.
	stdin := bufio.NewScanner(os.Stdin)

	selected, err := selectCity(cities, *cityID, stdin)
	if errors.Is(err, city.ErrCancelled) {
		fmt.Println("Exiting application.")
		return
	}
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}

	toAddr := *to
	if toAddr == "" {
		toAddr, err = promptEmail(stdin, os.Stdout)
		if errors.Is(err, errPromptCancelled) {
			fmt.Println("Exiting application.")
			return
		}
	} else if err := email.ValidateAddress(toAddr); err != nil {
		reportFailure(err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := db.Connect(ctx, cfg)
	if err != nil {
		reportFailure(err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	a := &app.App{
		Fetcher: weather.NewService(cfg),
		Store:   store,
		Builder: &report.Service{},
		Sender:  email.NewSender(cfg),
	}

	if !*daily {
		if err := a.Run(ctx, selected, toAddr); err != nil {
			reportFailure(err)
			os.Exit(1)
		}
		fmt.Println("\nReport successfully generated and sent via email.")
		return
	}

	sch := scheduler.New()
	if err := sch.StartDaily(*at, func() {
		if err := a.Run(ctx, selected, toAddr); err != nil {
			reportFailure(err)
			return
		}
		fmt.Println("Report successfully generated and sent via email.")
	}); err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		logger.Error("Scheduler error: %v", err)
		os.Exit(1)
	}
	logger.Info("Daily report for %s scheduled at %s.", selected.Name, *at)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	logger.Info("Received interrupt signal. Shutting down.")
	sch.Stop()
}

func selectCity(cities *city.Service, id int, stdin *bufio.Scanner) (city.City, error) {
	if id != 0 {
		c, ok := cities.ByID(id)
		if !ok {
			return city.City{}, fmt.Errorf("no city found for id %d", id)
		}
		return c, nil
	}
	return cities.Prompt(stdin, os.Stdout)
}

func promptEmail(scanner *bufio.Scanner, w io.Writer) (string, error) {
	for {
		fmt.Fprint(w, "Please enter the email address to send the report to: ")
		if !scanner.Scan() {
			fmt.Fprintln(w, "\nInput cancelled by user.")
			logger.Warn("Input ended while entering email address.")
			return "", errPromptCancelled
		}

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			fmt.Fprintln(w, "[ERROR] Email cannot be empty.")
			continue
		}
		if err := email.ValidateAddress(raw); err != nil {
			fmt.Fprintln(w, "[ERROR] Invalid email address format.")
			continue
		}
		return raw, nil
	}
}

// reportFailure maps each failure domain to its user-facing message. Detail
// for unclassified failures goes to the logs only.
func reportFailure(err error) {
	var (
		apiErr   *weather.APIError
		dbErr    *db.Error
		sendErr  *email.SendError
		fieldErr *report.FieldError
	)

	switch {
	case errors.As(err, &apiErr):
		fmt.Printf("[ERROR] Could not fetch weather data: %v\n", err)
		logger.Error("WeatherAPIError: %v", err)
	case errors.As(err, &dbErr):
		fmt.Printf("[ERROR] Could not save data to database: %v\n", err)
		logger.Error("DatabaseError: %v", err)
	case errors.As(err, &sendErr):
		fmt.Printf("[ERROR] Could not send email: %v\n", err)
		logger.Error("EmailSendError: %v", err)
	case errors.As(err, &fieldErr):
		fmt.Printf("[ERROR] Weather data was incomplete: %v\n", err)
		logger.Error("FieldError: %v", err)
	default:
		fmt.Println("[ERROR] An unexpected error occurred. See logs for details.")
		logger.Error("Unhandled error: %v", err)
	}
}
