// Package workers
package workers

import (
	"context"
	"time"

	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/logger"
)

type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type Manager struct {
	log logger.Logger

	scheduler *Scheduler
	services  *ManagerServices
	settings  ManagerSettings
}

type ManagerServices struct {
	Collector Collector
	Usage     domain.UsageService
}

type ManagerSettings struct {
	PollInterval  time.Duration
	FlushInterval time.Duration
	Retention     time.Duration
	CleanupHour   int
}

func NewManager(log logger.Logger, scheduler *Scheduler, services *ManagerServices, settings ManagerSettings) *Manager {
	return &Manager{
		log: log,

		scheduler: scheduler,
		services:  services,
		settings:  settings,
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.log.Info("worker: manager started", "poll_interval", m.settings.PollInterval.String())

	m.scheduler.RunByDuration(ctx, m.settings.PollInterval, &UsageCollectWorker{
		collector: m.services.Collector,
		usage:     m.services.Usage,
	})

	m.scheduler.RunByDuration(ctx, m.settings.FlushInterval, &UsageFlushWorker{
		usage: m.services.Usage,
	})

	m.scheduler.RunDaily(ctx, DailySchedule{Hour: m.settings.CleanupHour, Minute: 0}, &UsageCleanupWorker{
		usage:     m.services.Usage,
		retention: m.settings.Retention,
		clock:     m.scheduler.clock,
		log:       m.log,
	})
}
