package bookings

import (
	"context"
	"time"

	"courtly/pkg/logger"
)

// JobProcessor runs the background sweep that cancels PENDING bookings
// past their payment deadline. The create path also expires contested
// rows inline; this job keeps the table clean between contested creates.
type JobProcessor struct {
	service  Service
	interval time.Duration
	log      *logger.Logger
	done     chan struct{}
}

// NewJobProcessor creates the sweeper with the given interval.
func NewJobProcessor(service Service, interval time.Duration, log *logger.Logger) *JobProcessor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JobProcessor{
		service:  service,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop; it stops when ctx is cancelled or Stop
// is called.
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.run(ctx)
	jp.log.Info("booking expiry sweeper started", "interval", jp.interval.String())
}

// Stop terminates the sweep loop.
func (jp *JobProcessor) Stop() {
	close(jp.done)
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	expired, err := jp.service.ExpireStale(sweepCtx)
	if err != nil {
		jp.log.Error("booking expiry sweep failed", "error", err.Error())
		return
	}
	if expired > 0 {
		jp.log.Info("expired stale pending bookings", "count", expired)
	}
}
