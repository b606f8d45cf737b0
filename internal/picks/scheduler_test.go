// internal/picks/scheduler_test.go

package picks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sweepCountingService struct {
	Service
	sweeps int64
}

func (s *sweepCountingService) ExpireSweep(ctx context.Context) (int64, error) {
	atomic.AddInt64(&s.sweeps, 1)
	return 0, nil
}

func TestSchedulerRunsSweepAndStops(t *testing.T) {
	svc := &sweepCountingService{}
	scheduler := NewScheduler(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&svc.sweeps) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := atomic.LoadInt64(&svc.sweeps)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt64(&svc.sweeps), "sweep should stop after cancel")
}
