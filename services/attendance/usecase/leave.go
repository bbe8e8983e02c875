package usecase

import (
	"context"
	"fmt"
	"time"

	"presensi/domain"
)

// SubmitLeave records a sick/permission day and immediately cascades it
// onto every session the teacher is due to teach that date; the nightly
// sweep would do the same, this just does not make the teacher wait.
func (au *attendanceUC) SubmitLeave(ctx context.Context, teacherID int, req *domain.LeaveRequest) (*domain.LeaveResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, au.TimeOut)
	defer cancel()

	if !req.Status.LeaveStatus() {
		return nil, fmt.Errorf("%w: leave status must be sick or permission", domain.ErrValidation)
	}

	date := au.clock.Today()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, au.clock.Now().Location())
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
		}
		date = parsed
	}

	var resp *domain.LeaveResponse

	err := au.store.WithTx(ctx, func(tx domain.Store) error {
		regular, err := tx.TeacherAttendance().FindRegular(ctx, teacherID, date)
		if err != nil {
			return err
		}
		if regular == nil {
			regular = &domain.TeacherAttendance{
				TeacherID: teacherID,
				Date:      date,
				Status:    req.Status,
				Notes:     req.Notes,
			}
			if err := tx.TeacherAttendance().Create(ctx, regular); err != nil {
				return err
			}
		} else {
			regular.Status = req.Status
			if req.Notes != "" {
				regular.Notes = appendNote(regular.Notes, req.Notes)
			}
			if err := tx.TeacherAttendance().Update(ctx, regular); err != nil {
				return err
			}
		}

		sessions, err := tx.Sessions().ListForTeacher(ctx, teacherID, date)
		if err != nil {
			return err
		}

		impacted := 0
		for i := range sessions {
			session := &sessions[i]
			row, err := tx.TeacherAttendance().FindBySession(ctx, teacherID, session.SessionID)
			if err != nil {
				return err
			}
			if row == nil {
				sessionID := session.SessionID
				row = &domain.TeacherAttendance{
					TeacherID: teacherID,
					SessionID: &sessionID,
					Date:      date,
					Status:    req.Status,
					Notes:     fmt.Sprintf("cascaded from reported %s leave", req.Status),
				}
				if err := tx.TeacherAttendance().Create(ctx, row); err != nil {
					return err
				}
				impacted++
				continue
			}
			if row.Status == req.Status {
				continue
			}
			row.Status = req.Status
			row.Notes = appendNote(row.Notes, fmt.Sprintf("corrected by reported %s leave", req.Status))
			if err := tx.TeacherAttendance().Update(ctx, row); err != nil {
				return err
			}
			impacted++
		}

		resp = &domain.LeaveResponse{
			Date:             date,
			Status:           req.Status,
			ImpactedSessions: impacted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// MarkStudents bulk-upserts the roster marks for one session.
func (au *attendanceUC) MarkStudents(ctx context.Context, teacherID, sessionID int, req *domain.StudentMarkRequest) (*domain.StudentMarkResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, au.TimeOut)
	defer cancel()

	if len(req.Marks) == 0 {
		return nil, fmt.Errorf("%w: no marks supplied", domain.ErrValidation)
	}
	for _, mark := range req.Marks {
		if !mark.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, mark.Status)
		}
	}

	session, err := au.store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.EffectiveTeacherID() != teacherID {
		return nil, fmt.Errorf("%w: teacher is not responsible for this session", domain.ErrValidation)
	}

	now := au.clock.Now()

	err = au.store.WithTx(ctx, func(tx domain.Store) error {
		for _, mark := range req.Marks {
			row := &domain.StudentAttendance{
				StudentID: mark.StudentID,
				SessionID: sessionID,
				Status:    mark.Status,
				MarkedAt:  now,
				MarkedBy:  teacherID,
			}
			if err := tx.StudentAttendance().Upsert(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.StudentMarkResponse{
		SessionID: sessionID,
		Marked:    len(req.Marks),
	}, nil
}
