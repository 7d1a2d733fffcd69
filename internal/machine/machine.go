// Package machine is the facade over the usage monitor and the one-shot
// hardware descriptors of the host.
package machine

import (
	"context"

	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/gpu"
	"horizonx-machine/internal/logger"
	"horizonx-machine/internal/monitor"
	"horizonx-machine/internal/system"
)

type Machine struct {
	monitor *monitor.Monitor
	reader  *system.SystemReader
	nvidia  *gpu.Nvidia
	log     logger.Logger
}

// New takes nvidia as nil on hosts without an NVIDIA driver.
func New(mon *monitor.Monitor, reader *system.SystemReader, nvidia *gpu.Nvidia, log logger.Logger) *Machine {
	return &Machine{
		monitor: mon,
		reader:  reader,
		nvidia:  nvidia,
		log:     log,
	}
}

func (m *Machine) SystemInfo(ctx context.Context) domain.SystemInfo {
	host := m.reader.Host(ctx)

	info := domain.SystemInfo{
		OSName:          host.OSName,
		KernelVersion:   host.KernelVersion,
		OSVersion:       host.OSVersion,
		Distribution:    host.Distribution,
		Hostname:        host.Hostname,
		Memory:          m.reader.TotalMemory(ctx),
		VAAPI:           m.reader.VAAPI(),
		Processor:       m.reader.Processor(ctx),
		TotalProcessors: m.reader.LogicalCPUs(ctx),
		Graphics:        []domain.GraphicCard{},
		Disks:           m.reader.Disks(ctx),
		Cameras:         m.reader.Cameras(),
		Model:           m.reader.Model(),
	}

	if m.nvidia != nil {
		info.Nvidia = m.nvidia.Info(ctx)
		if cards := m.nvidia.Cards(ctx); cards != nil {
			info.Graphics = cards
		}
	}

	if info.Disks == nil {
		info.Disks = []domain.Disk{}
	}

	return info
}

func (m *Machine) GraphicsStatus(ctx context.Context) []domain.GraphicsUsage {
	if m.nvidia == nil {
		return []domain.GraphicsUsage{}
	}

	usages := m.nvidia.Usage(ctx)
	if usages == nil {
		return []domain.GraphicsUsage{}
	}

	return usages
}

func (m *Machine) TrackProcess(ctx context.Context, pid int32) error {
	return m.monitor.Track(ctx, pid)
}

func (m *Machine) UntrackProcess(pid int32) {
	m.monitor.Untrack(pid)
}

func (m *Machine) TrackedProcesses() []int32 {
	return m.monitor.Tracked()
}

// ProcessesStatus is the CPU usage of each tracked process since the last
// call, so polling every 10s yields usage over the last 10s.
func (m *Machine) ProcessesStatus(ctx context.Context) []domain.ProcessUsage {
	return m.monitor.PollProcesses(ctx)
}

func (m *Machine) SystemStatus(ctx context.Context) (domain.SystemStatus, error) {
	return m.monitor.PollSystem(ctx)
}

func (m *Machine) Close() error {
	if m.nvidia == nil {
		return nil
	}

	return m.nvidia.Close()
}
