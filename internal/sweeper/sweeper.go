// Package sweeper runs the review-timeout sweep on a fixed interval in the
// background of the API process.
package sweeper

import (
	"context"
	"log"
	"time"
)

type sweepService interface {
	SweepTimeouts(ctx context.Context) (int, error)
}

type Sweeper struct {
	svc      sweepService
	interval time.Duration
	logger   *log.Logger
}

func New(svc sweepService, interval time.Duration, logger *log.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{svc: svc, interval: interval, logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.svc.SweepTimeouts(ctx); err != nil {
		s.logger.Printf("sweep: %v", err)
	}
}
