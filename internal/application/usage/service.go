// Package usage fans collected usage reports out to the stream, the event
// bus and batched postgres storage.
package usage

import (
	"context"
	"sync"
	"time"

	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/logger"

	"github.com/google/uuid"
)

const defaultMaxBatchSize = 50

type Service struct {
	machineID uuid.UUID
	repo      domain.UsageRepository
	stream    domain.UsageStream
	bus       domain.EventBus
	log       logger.Logger

	buffer   []domain.UsageReport
	bufferMu sync.Mutex

	maxBatchSize int
}

// NewService accepts nil repo or stream when that backend is unavailable.
func NewService(
	machineID uuid.UUID,
	repo domain.UsageRepository,
	stream domain.UsageStream,
	bus domain.EventBus,
	log logger.Logger,
) *Service {
	return &Service{
		machineID:    machineID,
		repo:         repo,
		stream:       stream,
		bus:          bus,
		log:          log,
		buffer:       make([]domain.UsageReport, 0, defaultMaxBatchSize),
		maxBatchSize: defaultMaxBatchSize,
	}
}

var _ domain.UsageService = (*Service)(nil)

func (s *Service) Ingest(ctx context.Context, report domain.UsageReport) {
	if s.stream != nil {
		if err := s.stream.Publish(ctx, report); err != nil {
			s.log.Warn("usage: failed to publish to stream", "error", err)
		}
	}

	if s.repo != nil {
		s.bufferMu.Lock()
		s.buffer = append(s.buffer, report)
		bufferSize := len(s.buffer)
		s.bufferMu.Unlock()

		s.log.Debug("usage report added to buffer", "buffer_size", bufferSize)

		if bufferSize >= s.maxBatchSize {
			s.log.Debug("buffer size reached, forcing flush", "size", bufferSize)
			if err := s.Flush(ctx); err != nil {
				s.log.Error("usage: forced flush failed", "error", err)
			}
		}
	}

	if s.bus != nil {
		s.bus.Publish(domain.EventUsageReported, report)
	}
}

// Flush writes buffered reports in one batch. A failed batch is put back at
// the front of the buffer, trimmed to the newest reports so the buffer stays
// bounded while postgres is down.
func (s *Service) Flush(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	s.bufferMu.Lock()
	if len(s.buffer) == 0 {
		s.bufferMu.Unlock()
		return nil
	}

	batch := make([]domain.UsageReport, len(s.buffer))
	copy(batch, s.buffer)
	s.buffer = s.buffer[:0]
	s.bufferMu.Unlock()

	if err := s.repo.BulkInsert(ctx, batch); err != nil {
		s.bufferMu.Lock()
		merged := append(batch, s.buffer...)
		if over := len(merged) - s.maxBatchSize*4; over > 0 {
			merged = merged[over:]
		}
		s.buffer = merged
		s.bufferMu.Unlock()

		return err
	}

	s.log.Debug("usage reports flushed successfully", "count", len(batch))
	return nil
}

func (s *Service) Cleanup(ctx context.Context, cutoff time.Time) error {
	if s.repo == nil {
		return nil
	}

	return s.repo.Cleanup(ctx, s.machineID, cutoff)
}
