package monitor

import (
	"context"
	"fmt"
	"slices"

	"horizonx-machine/internal/domain"
)

// Track starts monitoring pid, replacing any existing baseline for it.
func (m *Monitor) Track(ctx context.Context, pid int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	samples, err := m.provider.Processes(ctx)
	if err != nil {
		return &domain.SamplingError{Op: "process snapshot", Err: err}
	}
	now := m.clock.Now()

	for _, s := range samples {
		if s.PID != pid {
			continue
		}

		m.tracked[pid] = &baseline{cpuTime: s.CPUTime, at: now}
		m.log.Debug("monitor: process tracked", "pid", pid)
		return nil
	}

	return fmt.Errorf("track pid %d: %w", pid, domain.ErrProcessNotFound)
}

// Untrack is a no-op for pids that are not tracked.
func (m *Monitor) Untrack(pid int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tracked[pid]; !ok {
		return
	}

	delete(m.tracked, pid)
	m.log.Debug("monitor: process untracked", "pid", pid)
}

func (m *Monitor) Tracked() []int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	pids := make([]int32, 0, len(m.tracked))
	for pid := range m.tracked {
		pids = append(pids, pid)
	}
	slices.Sort(pids)

	return pids
}
