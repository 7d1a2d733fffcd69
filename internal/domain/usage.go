package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageReport is one poll of the machine, as published to streams and storage.
type UsageReport struct {
	MachineID  uuid.UUID      `json:"machine_id"`
	System     *SystemStatus  `json:"system,omitempty"`
	Processes  []ProcessUsage `json:"processes"`
	RecordedAt time.Time      `json:"recorded_at"`
}

type UsageRepository interface {
	BulkInsert(ctx context.Context, reports []UsageReport) error
	Cleanup(ctx context.Context, machineID uuid.UUID, cutoff time.Time) error
}

type UsageStream interface {
	Publish(ctx context.Context, report UsageReport) error
	Recent(ctx context.Context, machineID uuid.UUID, limit int64) ([]UsageReport, error)
}

type UsageService interface {
	Ingest(ctx context.Context, report UsageReport)
	Flush(ctx context.Context) error
	Cleanup(ctx context.Context, cutoff time.Time) error
}

// UsageReader exposes the most recent report without polling the monitor.
type UsageReader interface {
	Latest() (UsageReport, bool)
}
