package workers

import (
	"context"
	"time"

	"horizonx-machine/internal/logger"

	"github.com/jonboulle/clockwork"
)

type DailySchedule struct {
	Hour   int
	Minute int
}

type Scheduler struct {
	loc   *time.Location
	clock clockwork.Clock
	log   logger.Logger
}

func NewScheduler(loc *time.Location, clock clockwork.Clock, log logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Scheduler{
		loc:   loc,
		clock: clock,
		log:   log,
	}
}

func (s *Scheduler) RunByDuration(ctx context.Context, dur time.Duration, worker Worker) {
	go func() {
		ticker := s.clock.NewTicker(dur)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				s.run(ctx, worker)
			}
		}
	}()
}

func (s *Scheduler) RunDaily(ctx context.Context, schedule DailySchedule, worker Worker) {
	go func() {
		for {
			timer := s.clock.NewTimer(s.clock.Until(nextDaily(s.clock.Now(), s.loc, schedule)))

			select {
			case <-ctx.Done():
				timer.Stop()
				s.log.Debug("daily worker canceled", "name", worker.Name())
				return
			case <-timer.Chan():
				s.run(ctx, worker)
			}
		}
	}()
}

func (s *Scheduler) run(ctx context.Context, worker Worker) {
	start := s.clock.Now()

	if err := worker.Run(ctx); err != nil {
		s.log.Error("worker failed", "name", worker.Name(), "error", err)
	}

	s.log.Debug("worker finished", "name", worker.Name(), "time", s.clock.Since(start))
}

// nextDaily is the first schedule time strictly after now.
func nextDaily(now time.Time, loc *time.Location, schedule DailySchedule) time.Time {
	now = now.In(loc)

	next := time.Date(
		now.Year(),
		now.Month(),
		now.Day(),
		schedule.Hour,
		schedule.Minute,
		0,
		0,
		loc,
	)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
