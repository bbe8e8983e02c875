package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"presensi/domain"
)

// endingSoonLead is how long before planned end the timing event fires.
const endingSoonLead = 5 * time.Minute

// Scheduler drives the two background tasks: the nightly reconciliation
// sweep and the minute-granularity session-timing notifier. Both only
// create rows behind existence checks or publish best-effort events, so
// they are safe to run alongside live check-in/check-out traffic.
type Scheduler struct {
	store      domain.Store
	clock      domain.Clock
	events     domain.EventPublisher
	reconciler domain.ReconcileUseCase
	log        *logrus.Logger
	sweepAt    string
	done       chan struct{}
}

func NewScheduler(store domain.Store, clock domain.Clock, events domain.EventPublisher, reconciler domain.ReconcileUseCase, log *logrus.Logger, sweepAt string) *Scheduler {
	return &Scheduler{
		store:      store,
		clock:      clock,
		events:     events,
		reconciler: reconciler,
		log:        log,
		sweepAt:    sweepAt,
		done:       make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.loop()
}

func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) loop() {
	s.log.Info("Scheduler started")
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	sweepHour, sweepMinute, err := domain.ParseClock(s.sweepAt)
	if err != nil {
		s.log.Warnf("invalid sweep time %q, defaulting to 01:30", s.sweepAt)
		sweepHour, sweepMinute = 1, 30
	}

	for {
		select {
		case <-s.done:
			s.log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			now := s.clock.Now()
			if now.Hour() == sweepHour && now.Minute() == sweepMinute {
				s.runSweep()
			}
			s.notifyEndingSessions(now)
		}
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	yesterday := s.clock.Today().AddDate(0, 0, -1)
	result, err := s.reconciler.Run(ctx, yesterday)
	if err != nil {
		// Leave the date to the next scheduled run or a manual trigger.
		s.log.Errorf("nightly sweep for %s failed: %v", yesterday.Format("2006-01-02"), err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"date":            result.Date.Format("2006-01-02"),
		"regular_created": result.RegularCreated,
		"session_created": result.SessionCreated,
		"skipped":         result.Skipped,
	}).Info("nightly sweep done")
}

// notifyEndingSessions pushes a timing event for each ongoing session
// crossing the lead threshold this minute. One event per session;
// dashboards tolerate the occasional duplicate.
func (s *Scheduler) notifyEndingSessions(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions, err := s.store.Sessions().ListByDate(ctx, s.clock.Today(), domain.SessionOngoing)
	if err != nil {
		s.log.Warnf("session timing: %v", err)
		return
	}

	for i := range sessions {
		session := &sessions[i]
		plannedEnd := domain.AtClock(s.clock.Today(), session.Schedule.EndTime)
		remaining := plannedEnd.Sub(now)
		if remaining > endingSoonLead || remaining <= endingSoonLead-time.Minute {
			continue
		}
		s.events.Publish(domain.Event{
			Type:      domain.EventSessionEndingSoon,
			SessionID: session.SessionID,
			TeacherID: session.EffectiveTeacherID(),
			Timestamp: now,
			Data: map[string]interface{}{
				"planned_end": plannedEnd,
			},
		})
	}
}
