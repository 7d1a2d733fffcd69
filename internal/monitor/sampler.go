package monitor

import (
	"cmp"
	"context"
	"slices"

	"horizonx-machine/internal/domain"
)

// PollProcesses reports CPU usage of every tracked process since its
// previous sample and its current resident memory, ordered by pid. Processes missing from the snapshot are
// left out of the result. A failing provider yields an empty result, never an error.
func (m *Monitor) PollProcesses(ctx context.Context) []domain.ProcessUsage {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tracked) == 0 {
		return []domain.ProcessUsage{}
	}

	samples, err := m.provider.Processes(ctx)
	if err != nil {
		m.log.Error("monitor: process snapshot failed", "error", err)
		return []domain.ProcessUsage{}
	}
	now := m.clock.Now()

	current := make(map[int32]int, len(samples))
	for i, s := range samples {
		current[s.PID] = i
	}

	usages := make([]domain.ProcessUsage, 0, len(m.tracked))
	for pid, prev := range m.tracked {
		i, ok := current[pid]
		if !ok {
			if m.pruneExited {
				delete(m.tracked, pid)
				m.log.Debug("monitor: pruned exited process", "pid", pid)
			} else {
				m.log.Debug("monitor: tracked process not running", "pid", pid)
			}
			continue
		}

		cpuNow := samples[i].CPUTime
		usages = append(usages, domain.ProcessUsage{
			PID:    pid,
			CPU:    cpuPercent(prev, cpuNow, now),
			Memory: samples[i].MemoryBytes,
		})

		prev.cpuTime = cpuNow
		prev.at = now
	}

	slices.SortFunc(usages, func(a, b domain.ProcessUsage) int {
		return cmp.Compare(a.PID, b.PID)
	})

	return usages
}

// PollSystem reports machine-wide CPU usage since the previous call and the
// memory in use right now. The first call only records the baseline and
// reports 0% CPU.
func (m *Monitor) PollSystem(ctx context.Context) (domain.SystemStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sample, err := m.provider.System(ctx)
	if err != nil {
		return domain.SystemStatus{}, &domain.SamplingError{Op: "system snapshot", Err: err}
	}
	now := m.clock.Now()

	status := domain.SystemStatus{Memory: sample.MemoryUsed}

	if m.system == nil {
		m.system = &baseline{cpuTime: sample.CPUTime, at: now}
		return status, nil
	}

	status.CPU = cpuPercent(m.system, sample.CPUTime, now)
	m.system.cpuTime = sample.CPUTime
	m.system.at = now

	return status, nil
}
