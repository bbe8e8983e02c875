package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"presensi/domain"
)

type reconcileUC struct {
	store   domain.Store
	clock   domain.Clock
	log     *logrus.Logger
	TimeOut time.Duration
}

func NewReconcileUseCase(store domain.Store, clock domain.Clock, log *logrus.Logger, to time.Duration) domain.ReconcileUseCase {
	return &reconcileUC{
		store:   store,
		clock:   clock,
		log:     log,
		TimeOut: to,
	}
}

// Run fills in "alpha" for every teacher who owed attendance on the
// date and produced no record: once per working-hours slot (regular
// rows) and once per session (session rows). A reported sick or
// permission day cascades onto the teacher's sessions instead of
// charging alpha. Every creation is guarded by an existence check, so
// re-running the sweep for the same date is a no-op.
func (ru *reconcileUC) Run(ctx context.Context, date time.Time) (*domain.ReconcileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ru.TimeOut)
	defer cancel()

	result := &domain.ReconcileResult{Date: date}

	dayOfWeek := ru.clock.DayOfWeek(date)
	if dayOfWeek == 6 || dayOfWeek == 7 {
		result.Skipped = "weekend"
		return result, nil
	}

	holidays, err := ru.store.Holidays().ListForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	for _, h := range holidays {
		if h.SchoolWide() {
			result.Skipped = "holiday"
			return result, nil
		}
	}

	// Regular-hours pass.
	workingHours, err := ru.store.WorkingHours().ListByDay(ctx, dayOfWeek)
	if err != nil {
		return nil, err
	}
	for _, wh := range workingHours {
		existing, err := ru.store.TeacherAttendance().FindRegular(ctx, wh.TeacherID, date)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		row := &domain.TeacherAttendance{
			TeacherID: wh.TeacherID,
			Date:      date,
			Status:    domain.StatusAlpha,
			Notes:     fmt.Sprintf("auto-filled: no attendance recorded for working hours %s-%s", wh.StartTime, wh.EndTime),
		}
		if err := ru.store.TeacherAttendance().Create(ctx, row); err != nil {
			return nil, err
		}
		result.RegularCreated++
	}

	// Session pass.
	sessions, err := ru.store.Sessions().ListByDate(ctx, date,
		domain.SessionScheduled, domain.SessionOngoing, domain.SessionCompleted)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		session := &sessions[i]
		teacherID := session.EffectiveTeacherID()
		if teacherID == 0 {
			continue
		}

		existing, err := ru.store.TeacherAttendance().FindBySession(ctx, teacherID, session.SessionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		sessionID := session.SessionID
		row := &domain.TeacherAttendance{
			TeacherID: teacherID,
			SessionID: &sessionID,
			Date:      date,
		}

		leave, err := ru.store.TeacherAttendance().FindRegular(ctx, teacherID, date)
		if err != nil {
			return nil, err
		}
		if leave != nil && leave.Status.LeaveStatus() {
			row.Status = leave.Status
			row.Notes = fmt.Sprintf("auto-filled: cascaded from reported %s leave", leave.Status)
		} else {
			row.Status = domain.StatusAlpha
			if session.SubstituteTeacherID != nil {
				row.Notes = "auto-filled: substitute did not check in"
			} else {
				row.Notes = "auto-filled: teacher did not check in"
			}
		}

		if err := ru.store.TeacherAttendance().Create(ctx, row); err != nil {
			return nil, err
		}
		result.SessionCreated++
	}

	ru.log.WithFields(logrus.Fields{
		"date":            date.Format("2006-01-02"),
		"regular_created": result.RegularCreated,
		"session_created": result.SessionCreated,
	}).Info("reconciliation sweep finished")

	return result, nil
}
