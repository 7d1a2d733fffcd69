// Package monitor tracks selected processes and the whole machine across
// polls and converts cumulative CPU time into utilization percentages.
//
// A Monitor never starts goroutines or timers. Every exported method holds
// the same lock for its whole duration, provider call included, so at most
// one registration or poll runs at a time.
package monitor

import (
	"sync"
	"time"

	"horizonx-machine/internal/logger"
	"horizonx-machine/internal/snapshot"

	"github.com/jonboulle/clockwork"
)

type baseline struct {
	cpuTime time.Duration
	at      time.Time
}

type Monitor struct {
	mu sync.Mutex

	provider snapshot.Provider
	clock    clockwork.Clock
	log      logger.Logger

	pruneExited bool

	tracked map[int32]*baseline
	system  *baseline
}

type Option func(*Monitor)

func WithClock(c clockwork.Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithPruneExited drops a tracked pid the first time a poll finds it gone.
// By default such entries are kept until Untrack.
func WithPruneExited(prune bool) Option {
	return func(m *Monitor) {
		m.pruneExited = prune
	}
}

func New(provider snapshot.Provider, log logger.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		provider: provider,
		clock:    clockwork.NewRealClock(),
		log:      log,
		tracked:  make(map[int32]*baseline),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// cpuPercent is CPU time consumed per wall-clock time since prev, not
// normalized by core count.
func cpuPercent(prev *baseline, cpuNow time.Duration, now time.Time) float64 {
	elapsed := now.Sub(prev.at)
	if elapsed <= 0 {
		return 0
	}

	delta := cpuNow - prev.cpuTime
	if delta <= 0 {
		return 0
	}

	return 100 * float64(delta) / float64(elapsed)
}
