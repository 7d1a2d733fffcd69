package postgres

import (
	"context"
	"fmt"
	"time"

	"horizonx-machine/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var usageColumns = []string{
	"machine_id",
	"cpu_usage_percent",
	"memory_used_bytes",
	"tracked_processes",
	"data",
	"recorded_at",
}

type UsageRepository struct {
	db *pgxpool.Pool
}

func NewUsageRepository(db *pgxpool.Pool) domain.UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) BulkInsert(ctx context.Context, reports []domain.UsageReport) error {
	if len(reports) == 0 {
		return nil
	}

	_, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"machine_usage"},
		usageColumns,
		pgx.CopyFromRows(usageRows(reports)),
	)
	if err != nil {
		return fmt.Errorf("failed to copy machine usage: %w", err)
	}

	return nil
}

func (r *UsageRepository) Cleanup(ctx context.Context, machineID uuid.UUID, cutoff time.Time) error {
	query := `
		DELETE FROM machine_usage
		WHERE machine_id = $1
		AND recorded_at <= $2
	`

	_, err := r.db.Exec(ctx, query, machineID, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup machine usage: %w", err)
	}

	return nil
}

// usageRows leaves the system columns NULL for reports without a system sample.
func usageRows(reports []domain.UsageReport) [][]any {
	rows := make([][]any, len(reports))
	for i, u := range reports {
		var cpu *float64
		var mem *int64
		if u.System != nil {
			c := u.System.CPU
			m := int64(u.System.Memory)
			cpu, mem = &c, &m
		}

		rows[i] = []any{
			u.MachineID,
			cpu,
			mem,
			int32(len(u.Processes)),
			u,
			u.RecordedAt,
		}
	}
	return rows
}
