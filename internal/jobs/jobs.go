package jobs

import (
	"time"

	"github.com/robfig/cron/v3"

	applog "grivyzom/internal/log"
	"grivyzom/internal/repos"
)

// Scheduler runs the background sweeps: event statuses move forward as the
// clock passes their start and end times, and expired offers deactivate.
type Scheduler struct {
	cron   *cron.Cron
	Events *repos.EventRepo
	Offers *repos.OfferRepo
}

func New(events *repos.EventRepo, offers *repos.OfferRepo) *Scheduler {
	return &Scheduler{cron: cron.New(), Events: events, Offers: offers}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	// Catch up immediately so a restart does not leave stale statuses for
	// up to a minute.
	s.sweep()
	return nil
}

func (s *Scheduler) Stop() { s.cron.Stop() }

func (s *Scheduler) sweep() {
	now := time.Now()
	today := now.Format("2006-01-02")
	clock := now.Format("15:04")

	if n, err := s.Events.SweepStatuses(today, clock); err != nil {
		applog.Job("jobs.events.sweep.fail", err, nil)
	} else if n > 0 {
		applog.Job("jobs.events.sweep", nil, map[string]any{"updated": n})
	}

	if n, err := s.Offers.DeactivateExpired(today); err != nil {
		applog.Job("jobs.offers.sweep.fail", err, nil)
	} else if n > 0 {
		applog.Job("jobs.offers.sweep", nil, map[string]any{"deactivated": n})
	}
}
