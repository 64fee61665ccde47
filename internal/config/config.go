package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ekaraman/weather-reporter/internal/logger"
)

const defaultWeatherAPIBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Config holds the application configuration. It is built once at startup
// and passed by pointer into every component constructor.
type Config struct {
	OpenWeatherAPIKey string
	WeatherAPIBaseURL string
	WeatherLang       string

	MongoURI string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string

	CitiesFilePath string
}

// Load reads the .env file (if present) and builds the configuration from
// environment variables. A missing required variable is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file loaded: %v", err)
	}

	apiKey, err := required("OPENWEATHER_API_KEY")
	if err != nil {
		return nil, err
	}
	mongoURI, err := required("MONGO_URI")
	if err != nil {
		return nil, err
	}
	smtpHost, err := required("SMTP_HOST")
	if err != nil {
		return nil, err
	}
	smtpUser, err := required("SMTP_USER")
	if err != nil {
		return nil, err
	}
	smtpPass, err := required("SMTP_PASSWORD")
	if err != nil {
		return nil, err
	}
	fromEmail, err := required("FROM_EMAIL")
	if err != nil {
		return nil, err
	}

	portStr := optional("SMTP_PORT", "587")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("SMTP_PORT must be a positive integer, got %q", portStr)
	}

	lang := optional("WEATHER_LANG", "tr")
	if len(lang) != 2 {
		return nil, fmt.Errorf("WEATHER_LANG must be a 2-letter code, got %q", lang)
	}

	logger.Info("Configuration loaded successfully.")

	return &Config{
		OpenWeatherAPIKey: apiKey,
		WeatherAPIBaseURL: optional("WEATHER_API_BASE_URL", defaultWeatherAPIBaseURL),
		WeatherLang:       lang,
		MongoURI:          mongoURI,
		SMTPHost:          smtpHost,
		SMTPPort:          port,
		SMTPUser:          smtpUser,
		SMTPPassword:      smtpPass,
		FromEmail:         fromEmail,
		CitiesFilePath:    optional("CITIES_FILE_PATH", ""),
	}, nil
}

// sanitize strips newline injection and surrounding whitespace from an
// environment value.
func sanitize(value string) string {
	value = strings.NewReplacer("\n", "", "\r", "").Replace(value)
	return strings.TrimSpace(value)
}

func required(name string) (string, error) {
	value := sanitize(os.Getenv(name))
	if value == "" {
		logger.Error("Missing required environment variable: %s", name)
		return "", fmt.Errorf("environment variable %s is required but missing", name)
	}
	return value, nil
}

func optional(name, def string) string {
	value := sanitize(os.Getenv(name))
	if value == "" {
		return def
	}
	return value
}
