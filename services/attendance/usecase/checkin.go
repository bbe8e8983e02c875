package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"presensi/domain"
)

// checkInEarlyWindow is how long before the planned start a teacher may
// already scan in.
const checkInEarlyWindow = 10 * time.Minute

type attendanceUC struct {
	store   domain.Store
	clock   domain.Clock
	events  domain.EventPublisher
	log     *logrus.Logger
	TimeOut time.Duration
}

func NewAttendanceUseCase(store domain.Store, clock domain.Clock, events domain.EventPublisher, log *logrus.Logger, to time.Duration) domain.AttendanceUseCase {
	return &attendanceUC{
		store:   store,
		clock:   clock,
		events:  events,
		log:     log,
		TimeOut: to,
	}
}

// CheckIn resolves a scanned class token to the correct session for
// "now" and records the teacher's presence. The gates run in a fixed
// order and the first failure wins; everything up to the commit runs
// inside one transaction so a duplicate or concurrent scan can never
// leave a half-created session/attendance pair.
func (au *attendanceUC) CheckIn(ctx context.Context, teacherID int, req *domain.CheckInRequest) (*domain.CheckInResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, au.TimeOut)
	defer cancel()

	var payload domain.QRPayload
	if err := sonic.Unmarshal([]byte(req.QRData), &payload); err != nil {
		return nil, domain.NewPolicyError(domain.CodeInvalidQR, "QR payload could not be parsed")
	}

	now := au.clock.Now()
	today := au.clock.Today()

	var resp *domain.CheckInResponse
	var pending []domain.Event

	err := au.store.WithTx(ctx, func(tx domain.Store) error {
		// Gate 1: geofence, only when coordinates were reported and a
		// fence is active.
		if req.Latitude != nil && req.Longitude != nil {
			fence, err := tx.Geofences().FindActive(ctx)
			if err != nil {
				return err
			}
			if fence != nil {
				distance := haversineMeters(fence.Latitude, fence.Longitude, *req.Latitude, *req.Longitude)
				if distance > fence.RadiusMeters {
					return domain.NewPolicyError(domain.CodeGeofence, "check-in location is outside the allowed area").
						WithDetail("distance_meters", math.Round(distance)).
						WithDetail("radius_meters", fence.RadiusMeters)
				}
			}
		}

		// Gate 2: school-wide holiday.
		holidays, err := tx.Holidays().ListForDate(ctx, today)
		if err != nil {
			return err
		}
		for _, h := range holidays {
			if h.SchoolWide() {
				return domain.NewPolicyError(domain.CodeHoliday, "no sessions today").
					WithDetail("reason", h.Reason)
			}
		}

		// Gate 3: QR payload against the class's rotating secret.
		if payload.Type != domain.QRTypeClassSession {
			return domain.NewPolicyError(domain.CodeInvalidQR, "unsupported QR payload type")
		}
		class, err := tx.Classes().FindByID(ctx, payload.ClassID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewPolicyError(domain.CodeInvalidQR, "unknown class")
		}
		if err != nil {
			return err
		}
		if payload.Token == "" || payload.Token != class.QRCodeData {
			return domain.NewPolicyError(domain.CodeInvalidQR, "stale or forged class token")
		}
		for _, h := range holidays {
			if h.ClassID != nil && *h.ClassID == class.ClassID {
				return domain.NewPolicyError(domain.CodeHoliday, "no sessions for this class today").
					WithDetail("reason", h.Reason)
			}
		}

		// Gate 4: active-session guard, re-evaluated inside the
		// transaction on every attempt. A scan for the class the open
		// session belongs to falls through; resolution then lands on that
		// same session and the re-scan reads back idempotently.
		active, err := au.activeSession(ctx, tx, teacherID)
		if err != nil {
			return err
		}
		if active != nil && active.ClassID != class.ClassID {
			return &domain.ConflictError{
				Code:          domain.CodeSessionConflict,
				Message:       "teacher already has an unfinished session",
				ActiveSession: active,
			}
		}

		// Gate 5: candidate resolution over owned schedules, earliest
		// start first. A completed occurrence passes the turn to the
		// next slot, which is how back-to-back periods hand over.
		dayOfWeek := au.clock.DayOfWeek(now)
		candidates, err := tx.Schedules().FindCandidates(ctx, class.ClassID, teacherID, dayOfWeek)
		if err != nil {
			return err
		}

		var selected *domain.Schedule
		var session *domain.ClassSession
		var tooEarly *domain.PolicyError
		substitute := false

		for i := range candidates {
			candidate := &candidates[i]
			windowOpen := domain.AtClock(today, candidate.StartTime).Add(-checkInEarlyWindow)
			if now.Before(windowOpen) {
				if tooEarly == nil {
					tooEarly = domain.NewPolicyError(domain.CodeTooEarly, "check-in window has not opened yet").
						WithDetail("window_opens_at", windowOpen).
						WithDetail("schedule_start", candidate.StartTime)
				}
				continue
			}
			existing, err := tx.Sessions().FindByScheduleAndDate(ctx, candidate.ScheduleID, today)
			if err != nil {
				return err
			}
			if existing != nil && existing.Status == domain.SessionCompleted {
				continue
			}
			selected = candidate
			session = existing
			break
		}

		// Gate 6: substitute fallback when no owned schedule resolves.
		if selected == nil {
			sub, err := tx.Sessions().FindSubstituteSession(ctx, teacherID, class.ClassID, today)
			if err != nil {
				return err
			}
			if sub != nil {
				substitute = true
				session = sub
				selected = &sub.Schedule
			}
		}

		// Gate 7: nothing resolved.
		if selected == nil {
			if tooEarly != nil {
				return tooEarly
			}
			return domain.NewPolicyError(domain.CodeNoActiveSchedule, "no active schedule or substitute assignment right now")
		}

		// Gate 8: re-validate the window against the final selection.
		windowOpen := domain.AtClock(today, selected.StartTime).Add(-checkInEarlyWindow)
		if now.Before(windowOpen) {
			return domain.NewPolicyError(domain.CodeTooEarly, "check-in window has not opened yet").
				WithDetail("window_opens_at", windowOpen).
				WithDetail("schedule_start", selected.StartTime)
		}

		// Step 9: find-or-create the occurrence and move it to ongoing.
		if session == nil {
			session = &domain.ClassSession{
				ScheduleID: selected.ScheduleID,
				Schedule:   *selected,
				Date:       today,
				StartTime:  &now,
				Status:     domain.SessionOngoing,
			}
			if err := tx.Sessions().Create(ctx, session); err != nil {
				return err
			}
			pending = append(pending, sessionEvent(domain.EventSessionStatusChanged, session.SessionID, teacherID, now, map[string]interface{}{
				"status": domain.SessionOngoing,
			}))
		} else if session.Status != domain.SessionOngoing {
			if session.Status.Terminal() {
				return domain.NewPolicyError(domain.CodeSessionCompleted, "session is already closed")
			}
			session.Status = domain.SessionOngoing
			session.StartTime = &now
			if err := tx.Sessions().Update(ctx, session); err != nil {
				return err
			}
			pending = append(pending, sessionEvent(domain.EventSessionStatusChanged, session.SessionID, teacherID, now, map[string]interface{}{
				"status": domain.SessionOngoing,
			}))
		}

		// Step 10: find-or-create the attendance row. An open row means
		// a double-tap re-scan and succeeds without mutation.
		row, err := tx.TeacherAttendance().FindBySession(ctx, teacherID, session.SessionID)
		if err != nil {
			return err
		}

		alreadyCheckedIn := false
		checkInTime := now
		lateMinutes := 0

		if row != nil {
			if row.CheckOutTime != nil {
				return domain.NewPolicyError(domain.CodeAlreadyCheckedOut, "already completed this session")
			}
			alreadyCheckedIn = true
			lateMinutes = row.LateMinutes
			if row.CheckInTime != nil {
				checkInTime = *row.CheckInTime
			}
		} else {
			plannedStart := domain.AtClock(today, selected.StartTime)
			if now.After(plannedStart) {
				lateMinutes = int(now.Sub(plannedStart) / time.Minute)
			}
			sessionID := session.SessionID
			row = &domain.TeacherAttendance{
				TeacherID:   teacherID,
				SessionID:   &sessionID,
				Date:        today,
				CheckInTime: &now,
				Status:      domain.StatusPresent,
				LateMinutes: lateMinutes,
				Latitude:    req.Latitude,
				Longitude:   req.Longitude,
			}
			if err := tx.TeacherAttendance().Create(ctx, row); err != nil {
				return err
			}
			pending = append(pending, sessionEvent(domain.EventTeacherCheckedIn, session.SessionID, teacherID, now, map[string]interface{}{
				"late_minutes": lateMinutes,
			}))
		}

		resp = &domain.CheckInResponse{
			SessionID:        session.SessionID,
			ClassID:          class.ClassID,
			ClassName:        class.Name,
			SubjectID:        selected.SubjectID,
			Status:           domain.SessionOngoing,
			CheckInTime:      checkInTime,
			LateMinutes:      lateMinutes,
			AlreadyCheckedIn: alreadyCheckedIn,
			Substitute:       substitute,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Roster fetch and observer notification stay outside the
	// transaction; neither may fail the recorded check-in.
	roster, err := au.store.Classes().Roster(ctx, resp.ClassID)
	if err != nil {
		au.log.Warnf("check-in: failed to load roster for class %d: %v", resp.ClassID, err)
	} else {
		resp.Roster = make([]domain.RosterStudent, 0, len(roster))
		for _, student := range roster {
			resp.Roster = append(resp.Roster, domain.RosterStudent{
				StudentID:  student.StudentID,
				ExternalID: student.ExternalID,
				Name:       student.Name,
				Gender:     student.Gender,
			})
		}
	}

	for _, event := range pending {
		au.events.Publish(event)
	}

	return resp, nil
}

// ActiveSession exposes the guard for clients that want to resume an
// unfinished session.
func (au *attendanceUC) ActiveSession(ctx context.Context, teacherID int) (*domain.ActiveSessionInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, au.TimeOut)
	defer cancel()

	return au.activeSession(ctx, au.store, teacherID)
}

// activeSession answers "does the teacher have an unfinished session":
// a session-scoped attendance row without checkout whose session is
// still ongoing. This is the system's core correctness invariant and is
// consulted, never cached.
func (au *attendanceUC) activeSession(ctx context.Context, store domain.Store, teacherID int) (*domain.ActiveSessionInfo, error) {
	row, session, err := store.TeacherAttendance().FindOpenSessionRow(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	className := ""
	class, err := store.Classes().FindByID(ctx, session.Schedule.ClassID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if class != nil {
		className = class.Name
	}

	return &domain.ActiveSessionInfo{
		SessionID:   session.SessionID,
		ClassID:     session.Schedule.ClassID,
		ClassName:   className,
		SubjectID:   session.Schedule.SubjectID,
		Date:        session.Date,
		StartTime:   session.StartTime,
		PlannedEnd:  session.PlannedEnd(),
		CheckInTime: row.CheckInTime,
	}, nil
}

func sessionEvent(eventType domain.EventType, sessionID, teacherID int, ts time.Time, data map[string]interface{}) domain.Event {
	return domain.Event{
		Type:      eventType,
		SessionID: sessionID,
		TeacherID: teacherID,
		Timestamp: ts,
		Data:      data,
	}
}
