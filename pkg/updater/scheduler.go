package updater

import (
	"context"
	"time"

	"github.com/richard-senior/rfef/internal/logger"
)

// Scheduler runs the updater on a fixed interval
type Scheduler struct {
	updater  *Updater
	interval time.Duration
	timeout  time.Duration
}

func NewScheduler(u *Updater, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{updater: u, interval: interval, timeout: 2 * time.Minute}
}

// Start runs once immediately and then on every tick until ctx is done
func (s *Scheduler) Start(ctx context.Context) {
	s.runOnce(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler shutting down", ctx.Err())
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	report, err := s.updater.Run(ctx, 0)
	if err != nil {
		logger.Error("Scheduled update failed", err)
		return
	}
	logger.Info("Scheduled update finished", report)
}
