package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"horizonx-machine/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Registry struct {
	redis  *redis.Client
	maxLen int64
}

func NewRegistry(r *redis.Client, maxLen int64) *Registry {
	return &Registry{redis: r, maxLen: maxLen}
}

var _ domain.UsageStream = (*Registry)(nil)

func (r *Registry) Publish(ctx context.Context, report domain.UsageReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("registry marshal failed: %w", err)
	}

	err = r.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.GetMachineUsageStream(report.MachineID),
		Values: map[string]any{
			"data": data,
		},
		MaxLen: r.maxLen,
		Approx: true,
	}).Err()
	if err != nil {
		return fmt.Errorf("registry xadd failed: %w", err)
	}

	return nil
}

// Recent returns up to limit reports, newest first.
func (r *Registry) Recent(ctx context.Context, machineID uuid.UUID, limit int64) ([]domain.UsageReport, error) {
	msgs, err := r.redis.XRevRangeN(ctx, domain.GetMachineUsageStream(machineID), "+", "-", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("registry xrevrange failed: %w", err)
	}

	if len(msgs) == 0 {
		return nil, domain.ErrUsageNotFound
	}

	return decodeReports(msgs), nil
}

// decodeReports drops entries that are not valid reports.
func decodeReports(msgs []redis.XMessage) []domain.UsageReport {
	reports := make([]domain.UsageReport, 0, len(msgs))
	for _, msg := range msgs {
		var raw []byte
		switch v := msg.Values["data"].(type) {
		case string:
			raw = []byte(v)
		case []byte:
			raw = v
		default:
			continue
		}

		var report domain.UsageReport
		if err := json.Unmarshal(raw, &report); err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports
}
