// Package metrics turns monitor polls into usage reports and exposes them to
// prometheus.
package metrics

import (
	"context"
	"sync"

	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const defaultMaxSamples = 10

type Collector struct {
	machine   domain.MachineService
	machineID uuid.UUID
	clock     clockwork.Clock
	log       logger.Logger

	buffer     []domain.UsageReport
	bufferMu   sync.Mutex
	maxSamples int

	// set once the system CPU baseline has been taken
	primed bool
}

func NewCollector(machine domain.MachineService, machineID uuid.UUID, clock clockwork.Clock, log logger.Logger) *Collector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Collector{
		machine:   machine,
		machineID: machineID,
		clock:     clock,
		log:       log,

		buffer:     make([]domain.UsageReport, 0, defaultMaxSamples),
		maxSamples: defaultMaxSamples,
	}
}

var _ domain.UsageReader = (*Collector)(nil)

// Prime takes the system CPU baseline so the first collected report covers a
// real interval.
func (c *Collector) Prime(ctx context.Context) error {
	if _, err := c.machine.SystemStatus(ctx); err != nil {
		return err
	}

	c.bufferMu.Lock()
	c.primed = true
	c.bufferMu.Unlock()
	return nil
}

// Collect polls processes and the system once. A failed system sample leaves
// System nil; the process part is still reported. Without a prior Prime the
// first system sample only sets the baseline and is left out as well.
func (c *Collector) Collect(ctx context.Context) domain.UsageReport {
	report := domain.UsageReport{
		MachineID: c.machineID,
		Processes: c.machine.ProcessesStatus(ctx),
	}

	c.bufferMu.Lock()
	primed := c.primed
	c.bufferMu.Unlock()

	status, err := c.machine.SystemStatus(ctx)
	switch {
	case err != nil:
		c.log.Error("metrics: failed to sample system", "error", err)
	case !primed:
		c.log.Debug("metrics: system baseline taken")
		c.bufferMu.Lock()
		c.primed = true
		c.bufferMu.Unlock()
	default:
		report.System = &status
	}

	if report.Processes == nil {
		report.Processes = []domain.ProcessUsage{}
	}
	report.RecordedAt = c.clock.Now().UTC()

	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()

	if len(c.buffer) >= c.maxSamples {
		c.buffer = c.buffer[1:]
	}
	c.buffer = append(c.buffer, report)

	return report
}

func (c *Collector) Latest() (domain.UsageReport, bool) {
	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()

	if len(c.buffer) == 0 {
		return domain.UsageReport{}, false
	}

	return c.buffer[len(c.buffer)-1], true
}
