package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/ekaraman/weather-reporter/internal/logger"
)

// Scheduler runs the report job once a day at a fixed local time.
type Scheduler struct {
	cron *gocron.Scheduler
}

func New() *Scheduler {
	return &Scheduler{cron: gocron.NewScheduler(time.Local)}
}

// StartDaily schedules job every day at the given "HH:MM" time and starts
// the scheduler in the background.
func (s *Scheduler) StartDaily(at string, job func()) error {
	_, err := s.cron.Every(1).Day().At(at).Do(func() {
		logger.Info("--- Daily Report Job Started ---")
		defer logger.Info("--- Daily Report Job Finished ---")
		job()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule daily job at %q: %w", at, err)
	}

	s.cron.StartAsync()
	return nil
}

func (s *Scheduler) Jobs() int {
	return len(s.cron.Jobs())
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
