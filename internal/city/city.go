package city

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ekaraman/weather-reporter/internal/logger"
)

var defaultCitiesPath = filepath.Join("data", "turkey_cities.json")

// ErrCancelled reports that the user aborted the interactive selection.
// It is a controlled early-exit, not a failure.
var ErrCancelled = errors.New("city selection cancelled")

// City is one selectable entry: a display name plus the query string passed
// to the weather API. The list is immutable after load.
type City struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Query string `json:"query"`
}

type Service struct {
	cities []City
}

// Load reads the city list from the given JSON file, falling back to the
// bundled default path when none is configured.
func Load(path string) (*Service, error) {
	if path == "" {
		path = defaultCitiesPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open city list %s: %w", path, err)
	}

	var cities []City
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, fmt.Errorf("failed to parse city list %s: %w", path, err)
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("city list %s is empty", path)
	}
	for _, c := range cities {
		if c.ID <= 0 || c.Name == "" || c.Query == "" {
			return nil, fmt.Errorf("city list %s contains an invalid entry: %+v", path, c)
		}
	}

	logger.Info("Loaded %d cities from %s", len(cities), path)
	return &Service{cities: cities}, nil
}

func (s *Service) Cities() []City {
	return s.cities
}

func (s *Service) ByID(id int) (City, bool) {
	for _, c := range s.cities {
		if c.ID == id {
			return c, true
		}
	}
	return City{}, false
}

// Prompt lists the cities on w and reads ids from scanner until the user
// enters a valid one. 'q', 'quit', 'exit' or end of input return
// ErrCancelled. The scanner is shared with any later prompts so no input
// is buffered away between them.
func (s *Service) Prompt(scanner *bufio.Scanner, w io.Writer) (City, error) {
	fmt.Fprintln(w, "=== Turkey Weather Reporter ===")
	for _, c := range s.cities {
		fmt.Fprintf(w, "%2d - %s\n", c.ID, c.Name)
	}

	for {
		fmt.Fprint(w, "Please enter the city ID (or 'q' to quit): ")
		if !scanner.Scan() {
			fmt.Fprintln(w, "\nInput cancelled by user.")
			logger.Warn("Input ended while selecting city.")
			return City{}, ErrCancelled
		}

		raw := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(raw) {
		case "q", "quit", "exit":
			logger.Info("User chose to exit during city selection.")
			return City{}, ErrCancelled
		}

		id, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintln(w, "Please enter a valid numeric city ID.")
			continue
		}
		if id <= 0 {
			fmt.Fprintln(w, "City ID must be a positive integer.")
			continue
		}

		c, ok := s.ByID(id)
		if !ok {
			fmt.Fprintln(w, "No city found for this ID. Please try again.")
			continue
		}

		logger.Info("User selected city: %s (%s)", c.Name, c.Query)
		return c, nil
	}
}
