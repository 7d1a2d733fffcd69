// Package snapshot reads point-in-time process and system counters.
package snapshot

import (
	"context"
	"time"
)

type ProcessSample struct {
	PID         int32
	CPUTime     time.Duration
	MemoryBytes uint64
}

type SystemSample struct {
	CPUTime     time.Duration
	MemoryUsed  uint64
	MemoryTotal uint64
}

// Provider returns fresh, independently owned snapshots on every call.
type Provider interface {
	Processes(ctx context.Context) ([]ProcessSample, error)
	System(ctx context.Context) (SystemSample, error)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
