package services

import (
	"context"
	"log"
	"time"
)

// Scheduler invokes the auto-checkout job on a fixed cadence. The job gates
// itself against the configured schedule, so the tick interval only has to
// be smaller than the grace window.
type Scheduler struct {
	checkout *AutoCheckoutService
	interval time.Duration
}

func NewScheduler(checkout *AutoCheckoutService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{checkout: checkout, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			result := s.checkout.Run(false)
			switch result.Status {
			case RunStatusCompleted:
				log.Printf("auto-checkout: completed, checked_out=%d failed=%d", result.CheckedOut, result.Failed)
			case RunStatusNoBookings:
				log.Println("auto-checkout: no bookings due")
			case RunStatusError:
				log.Printf("auto-checkout: run failed: %s", result.Error)
			}
		case <-ctx.Done():
			return
		}
	}
}
