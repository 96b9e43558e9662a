// Package scheduler fires the daily pipeline run on a cron trigger. Runs
// never overlap: a trigger arriving while a run is still in progress is
// skipped, since two concurrent passes would mail the same recipient twice
// with no idempotence guard.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/elvenpost/chronicle/internal/config"
)

type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	running  sync.Mutex
}

func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		location: loc,
	}, nil
}

// ScheduleDaily registers task at the given HH:MM every day.
func (s *Scheduler) ScheduleDaily(digestTime string, task func()) error {
	if err := config.ValidateTime(digestTime); err != nil {
		return err
	}

	hour := int(digestTime[0]-'0')*10 + int(digestTime[1]-'0')
	minute := int(digestTime[3]-'0')*10 + int(digestTime[4]-'0')

	expr := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(expr, func() { s.runGuarded(task) }); err != nil {
		return fmt.Errorf("adding cron entry: %w", err)
	}

	slog.Info("daily chronicle scheduled", "time", digestTime, "cron", expr, "timezone", s.location.String())
	return nil
}

// RunNow executes the task immediately under the same overlap guard the
// cron trigger uses.
func (s *Scheduler) RunNow(task func()) {
	s.runGuarded(task)
}

func (s *Scheduler) runGuarded(task func()) {
	if !s.running.TryLock() {
		slog.Warn("previous run still in progress, skipping trigger")
		return
	}
	defer s.running.Unlock()
	task()
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
