package system

import (
	"context"

	"horizonx-machine/internal/domain"

	"github.com/shirou/gopsutil/v4/cpu"
)

func (r *SystemReader) Processor(ctx context.Context) domain.Processor {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 {
		if err != nil {
			r.log.Debug("failed to read cpu info", "error", err.Error())
		}
		return domain.Processor{Vendor: "Unknown", Brand: "Unknown"}
	}

	first := infos[0]
	return domain.Processor{
		Frequency: uint64(first.Mhz),
		Vendor:    orUnknown(first.VendorID),
		Brand:     orUnknown(first.ModelName),
	}
}

func (r *SystemReader) LogicalCPUs(ctx context.Context) int {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		r.log.Debug("failed to count cpus", "error", err.Error())
		return 0
	}

	return n
}
