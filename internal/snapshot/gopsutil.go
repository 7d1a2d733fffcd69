package snapshot

import (
	"context"
	"errors"
	"fmt"

	"horizonx-machine/internal/logger"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

type PsutilProvider struct {
	log logger.Logger
}

func NewProvider(log logger.Logger) *PsutilProvider {
	return &PsutilProvider{log: log}
}

func (p *PsutilProvider) Processes(ctx context.Context) ([]ProcessSample, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	samples := make([]ProcessSample, 0, len(procs))
	for _, proc := range procs {
		times, err := proc.TimesWithContext(ctx)
		if err != nil {
			// exited between listing and reading, or not permitted
			p.log.Debug("snapshot: skipping process", "pid", proc.Pid, "error", err.Error())
			continue
		}

		sample := ProcessSample{
			PID:     proc.Pid,
			CPUTime: secondsToDuration(times.User + times.System),
		}

		if memInfo, err := proc.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
			sample.MemoryBytes = memInfo.RSS
		}

		samples = append(samples, sample)
	}

	return samples, nil
}

func (p *PsutilProvider) System(ctx context.Context) (SystemSample, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return SystemSample{}, fmt.Errorf("failed to read cpu times: %w", err)
	}
	if len(times) == 0 {
		return SystemSample{}, errors.New("no cpu times reported")
	}

	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return SystemSample{}, fmt.Errorf("failed to read memory: %w", err)
	}

	return SystemSample{
		CPUTime:     secondsToDuration(busySeconds(times[0])),
		MemoryUsed:  vmem.Used,
		MemoryTotal: vmem.Total,
	}, nil
}

// Guest time is already folded into User on Linux.
func busySeconds(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Nice + t.Irq + t.Softirq + t.Steal
}
