package workers

import (
	"context"
	"fmt"
	"time"

	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/logger"

	"github.com/jonboulle/clockwork"
)

type Collector interface {
	Collect(ctx context.Context) domain.UsageReport
}

// UsageCollectWorker is the only regular caller of the monitor polls.
type UsageCollectWorker struct {
	collector Collector
	usage     domain.UsageService
}

func NewUsageCollectWorker(collector Collector, usage domain.UsageService) Worker {
	return &UsageCollectWorker{collector: collector, usage: usage}
}

func (w *UsageCollectWorker) Name() string {
	return "usage_collect"
}

func (w *UsageCollectWorker) Run(ctx context.Context) error {
	w.usage.Ingest(ctx, w.collector.Collect(ctx))
	return nil
}

type UsageFlushWorker struct {
	usage domain.UsageService
}

func NewUsageFlushWorker(usage domain.UsageService) Worker {
	return &UsageFlushWorker{usage: usage}
}

func (w *UsageFlushWorker) Name() string {
	return "usage_flush"
}

func (w *UsageFlushWorker) Run(ctx context.Context) error {
	if err := w.usage.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush usage reports: %w", err)
	}
	return nil
}

type UsageCleanupWorker struct {
	usage     domain.UsageService
	retention time.Duration
	clock     clockwork.Clock
	log       logger.Logger
}

func NewUsageCleanupWorker(usage domain.UsageService, retention time.Duration, clock clockwork.Clock, log logger.Logger) Worker {
	return &UsageCleanupWorker{
		usage:     usage,
		retention: retention,
		clock:     clock,
		log:       log,
	}
}

func (w *UsageCleanupWorker) Name() string {
	return "usage_cleanup"
}

func (w *UsageCleanupWorker) Run(ctx context.Context) error {
	cutoff := w.clock.Now().UTC().Add(-w.retention)

	if err := w.usage.Cleanup(ctx, cutoff); err != nil {
		return fmt.Errorf("failed to cleanup usage reports: %w", err)
	}

	w.log.Info("usage reports cleaned up", "cutoff", cutoff.Format(time.RFC3339))
	return nil
}
