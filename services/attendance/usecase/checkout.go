package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"presensi/domain"
)

// Checkout policy tiers, by elapsed percentage of the planned duration.
const (
	checkoutHardFloorPercent = 50
	checkoutFreePercent      = 80
)

// CheckOut arbitrates closing a session by elapsed time. Below 50% of
// the planned duration checkout is not offered; between 50% and 80% it
// needs a reason; from 80% it is unconditional. A session left over
// from a previous day skips the tiers and closes immediately.
func (au *attendanceUC) CheckOut(ctx context.Context, teacherID, sessionID int, req *domain.CheckOutRequest) (*domain.CheckOutResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, au.TimeOut)
	defer cancel()

	now := au.clock.Now()
	today := au.clock.Today()
	reason := strings.TrimSpace(req.EarlyCheckoutReason)

	var resp *domain.CheckOutResponse
	var pending []domain.Event

	err := au.store.WithTx(ctx, func(tx domain.Store) error {
		session, err := tx.Sessions().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status.Terminal() {
			return domain.NewPolicyError(domain.CodeSessionCompleted, "session is already closed")
		}

		row, err := tx.TeacherAttendance().FindBySession(ctx, teacherID, sessionID)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound
		}
		if row.CheckOutTime != nil {
			return domain.NewPolicyError(domain.CodeAlreadyCheckedOut, "already checked out of this session")
		}

		// Date columns come back in a different zone than the school
		// clock, so compare civil dates, not instants.
		stale := session.Date.Format("2006-01-02") != today.Format("2006-01-02")

		// Plan today's sessions on the school clock's date so the zone
		// of the stored date column cannot skew the window.
		planDate := session.Date
		if !stale {
			planDate = today
		}
		plannedStart := domain.AtClock(planDate, session.Schedule.StartTime)
		if session.StartTime != nil {
			plannedStart = *session.StartTime
		}
		plannedEnd := domain.AtClock(planDate, session.Schedule.EndTime)

		total := plannedEnd.Sub(plannedStart)
		if total <= 0 {
			return fmt.Errorf("session %d has a non-positive planned duration", sessionID)
		}
		elapsed := now.Sub(plannedStart)
		elapsedPercent := int(math.Round(float64(elapsed) / float64(total) * 100))

		if !stale {
			if elapsedPercent < checkoutHardFloorPercent {
				freeAt := plannedStart.Add(total * checkoutFreePercent / 100)
				return domain.NewPolicyError(domain.CodeCheckoutTooEarly, "checkout is not available yet").
					WithDetail("elapsed_percent", elapsedPercent).
					WithDetail("minutes_until_allowed", int(math.Ceil(freeAt.Sub(now).Minutes())))
			}
			if elapsedPercent < checkoutFreePercent && reason == "" {
				return domain.NewPolicyError(domain.CodeReasonRequired, "early checkout requires a reason").
					WithDetail("elapsed_percent", elapsedPercent).
					WithDetail("allowed_reasons", domain.EarlyCheckoutReasons)
			}
		}

		isEarly := now.Before(plannedEnd)
		earlyMinutes := 0
		if isEarly {
			earlyMinutes = int(plannedEnd.Sub(now) / time.Minute)
		}

		session.Status = domain.SessionCompleted
		session.EndTime = &now
		if err := tx.Sessions().Update(ctx, session); err != nil {
			return err
		}

		row.CheckOutTime = &now
		row.EarlyCheckoutMinutes = earlyMinutes
		switch {
		case stale:
			row.Notes = appendNote(row.Notes, fmt.Sprintf("auto-closed: checkout on %s for session dated %s", today.Format("2006-01-02"), session.Date.Format("2006-01-02")))
		case reason != "":
			row.Notes = appendNote(row.Notes, "early checkout: "+reason)
		case isEarly:
			row.Notes = appendNote(row.Notes, fmt.Sprintf("checked out %d minutes before planned end", earlyMinutes))
		}
		if err := tx.TeacherAttendance().Update(ctx, row); err != nil {
			return err
		}

		resp = &domain.CheckOutResponse{
			SessionID:       session.SessionID,
			CheckOutTime:    now,
			ElapsedPercent:  elapsedPercent,
			ElapsedMinutes:  int(elapsed / time.Minute),
			TotalMinutes:    int(total / time.Minute),
			IsEarlyCheckout: isEarly,
			IsStaleClosure:  stale,
		}
		pending = append(pending,
			sessionEvent(domain.EventSessionStatusChanged, session.SessionID, teacherID, now, map[string]interface{}{
				"status": domain.SessionCompleted,
			}),
			sessionEvent(domain.EventTeacherCheckedOut, session.SessionID, teacherID, now, map[string]interface{}{
				"elapsed_percent": elapsedPercent,
				"early":           isEarly,
			}),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, event := range pending {
		au.events.Publish(event)
	}

	return resp, nil
}

func appendNote(notes, addition string) string {
	if notes == "" {
		return addition
	}
	return notes + "; " + addition
}
