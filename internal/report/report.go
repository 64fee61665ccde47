package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ekaraman/weather-reporter/internal/logger"
	"github.com/ekaraman/weather-reporter/internal/weather"
)

const (
	headerTimeFormat   = "02.01.2006 15:04"
	unknownDescription = "Unknown"
	signOff            = "We wish you a good day."
)

var separator = strings.Repeat("-", 40)

// FieldError reports a required weather field that is absent or not of the
// expected shape. No partial report is ever produced.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("weather payload is missing required field %q", e.Field)
}

// Service builds the plain-text daily report. It validates the payload
// strictly before emitting a single line.
type Service struct{}

// Build renders the fixed-layout daily report for a city. It requires all
// six numeric "main" fields, both "wind" fields and a non-empty "weather"
// list whose first entry is an object; the first missing requirement aborts
// with a FieldError.
func (s *Service) Build(cityName string, payload weather.Payload) (string, error) {
	main, err := group(payload, "main")
	if err != nil {
		return "", err
	}
	wind, err := group(payload, "wind")
	if err != nil {
		return "", err
	}
	entry, err := firstWeatherEntry(payload)
	if err != nil {
		return "", err
	}

	temp, err := number(main, "main.temp")
	if err != nil {
		return "", err
	}
	feelsLike, err := number(main, "main.feels_like")
	if err != nil {
		return "", err
	}
	tempMin, err := number(main, "main.temp_min")
	if err != nil {
		return "", err
	}
	tempMax, err := number(main, "main.temp_max")
	if err != nil {
		return "", err
	}
	humidity, err := number(main, "main.humidity")
	if err != nil {
		return "", err
	}
	pressure, err := number(main, "main.pressure")
	if err != nil {
		return "", err
	}
	windSpeed, err := number(wind, "wind.speed")
	if err != nil {
		return "", err
	}
	windDeg, err := number(wind, "wind.deg")
	if err != nil {
		return "", err
	}

	// "Unknown" covers only an absent key inside an otherwise valid entry;
	// an absent list or entry was already rejected above.
	description := unknownDescription
	if v, ok := entry["description"]; ok {
		description = fmt.Sprintf("%v", v)
	}
	description = sanitizeText(description)

	cityClean := sanitizeText(cityName)

	lines := []string{
		fmt.Sprintf("WEATHER REPORT (Daily) - %s", time.Now().Format(headerTimeFormat)),
		separator,
		fmt.Sprintf("City: %s", cityClean),
		fmt.Sprintf("Condition: %s", description),
		fmt.Sprintf("Temperature: %s°C", formatNumber(temp)),
		fmt.Sprintf("Feels Like: %s°C", formatNumber(feelsLike)),
		fmt.Sprintf("Min / Max: %s°C / %s°C", formatNumber(tempMin), formatNumber(tempMax)),
		fmt.Sprintf("Humidity: %s%%", formatNumber(humidity)),
		fmt.Sprintf("Pressure: %s hPa", formatNumber(pressure)),
		fmt.Sprintf("Wind Speed: %s m/s (%s°)", formatNumber(windSpeed), formatNumber(windDeg)),
		separator,
		signOff,
	}

	logger.Info("Daily weather report built for city %q.", cityClean)
	return strings.Join(lines, "\n"), nil
}

// sanitizeText replaces line breaks with a single space and trims.
func sanitizeText(text string) string {
	text = strings.NewReplacer("\n", " ", "\r", " ").Replace(text)
	return strings.TrimSpace(text)
}

// formatNumber renders values the way they appear in the API payload:
// 20 stays "20", 3.5 stays "3.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func group(payload weather.Payload, key string) (map[string]interface{}, error) {
	v, ok := payload[key]
	if !ok {
		return nil, &FieldError{Field: key}
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, &FieldError{Field: key}
	}
	return m, nil
}

func firstWeatherEntry(payload weather.Payload) (map[string]interface{}, error) {
	v, ok := payload["weather"]
	if !ok {
		return nil, &FieldError{Field: "weather"}
	}
	list, ok := v.([]interface{})
	if !ok || len(list) == 0 {
		return nil, &FieldError{Field: "weather"}
	}
	entry, ok := list[0].(map[string]interface{})
	if !ok {
		return nil, &FieldError{Field: "weather[0]"}
	}
	return entry, nil
}

func number(m map[string]interface{}, field string) (float64, error) {
	key := field
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		key = field[i+1:]
	}

	v, ok := m[key]
	if !ok {
		return 0, &FieldError{Field: field}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &FieldError{Field: field}
		}
		return f, nil
	default:
		return 0, &FieldError{Field: field}
	}
}
