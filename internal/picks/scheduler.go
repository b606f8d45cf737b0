// internal/picks/scheduler.go

package picks

import (
	"context"
	"log"
	"time"
)

// Scheduler drives the background expiry sweep. Every interval it moves
// pick requests past their TTL from ACTIVE to EXPIRED.
type Scheduler struct {
	service  Service
	interval time.Duration
}

func NewScheduler(service Service, interval time.Duration) *Scheduler {
	return &Scheduler{service: service, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runSweep(ctx)
}

func (s *Scheduler) runSweep(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := s.service.ExpireSweep(ctx)
			if err != nil {
				log.Printf("Expiry sweep failed: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("Expiry sweep: %d pick requests expired", count)
			}
		case <-ctx.Done():
			return
		}
	}
}
