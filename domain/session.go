package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether the session can no longer change state.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// ClassSession is one concrete occurrence of a schedule on a calendar
// date. At most one session exists per (schedule, date). StartTime is
// the observed start (set at check-in) and may differ from the
// schedule's planned start; EndTime is set on completion.
type ClassSession struct {
	SessionID           int            `gorm:"primaryKey;autoIncrement" json:"session_id"`
	ScheduleID          int            `gorm:"not null;uniqueIndex:uq_session_occurrence" json:"schedule_id"`
	Schedule            Schedule       `gorm:"foreignKey:ScheduleID;references:ScheduleID;constraint:OnDelete:CASCADE" json:"schedule"`
	Date                time.Time      `gorm:"type:date;not null;uniqueIndex:uq_session_occurrence" json:"date"`
	StartTime           *time.Time     `json:"start_time,omitempty"`
	EndTime             *time.Time     `json:"end_time,omitempty"`
	Status              SessionStatus  `gorm:"type:varchar(10);not null;default:scheduled" json:"status"`
	SubstituteTeacherID *int           `json:"substitute_teacher_id,omitempty"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// EffectiveTeacherID is the teacher accountable for the occurrence: the
// substitute when one is assigned, the schedule owner otherwise.
func (s *ClassSession) EffectiveTeacherID() int {
	if s.SubstituteTeacherID != nil {
		return *s.SubstituteTeacherID
	}
	return s.Schedule.TeacherID
}

// PlannedStart returns the observed start when present, the schedule's
// planned start on the session date otherwise.
func (s *ClassSession) PlannedStart() time.Time {
	if s.StartTime != nil {
		return *s.StartTime
	}
	return AtClock(s.Date, s.Schedule.StartTime)
}

// PlannedEnd always derives from the schedule; EndTime only records the
// actual closure moment.
func (s *ClassSession) PlannedEnd() time.Time {
	return AtClock(s.Date, s.Schedule.EndTime)
}

type SessionRepo interface {
	FindByID(ctx context.Context, id int) (*ClassSession, error)
	FindByScheduleAndDate(ctx context.Context, scheduleID int, date time.Time) (*ClassSession, error)
	// FindSubstituteSession returns a non-completed session on the date
	// where the teacher stands in for the given class, or nil.
	FindSubstituteSession(ctx context.Context, teacherID, classID int, date time.Time) (*ClassSession, error)
	// ListByDate returns the date's sessions in the given statuses with
	// their schedules loaded.
	ListByDate(ctx context.Context, date time.Time, statuses ...SessionStatus) ([]ClassSession, error)
	// ListForTeacher returns the date's sessions the teacher is
	// accountable for (owned and not substituted away, or substituting).
	ListForTeacher(ctx context.Context, teacherID int, date time.Time) ([]ClassSession, error)
	Create(ctx context.Context, session *ClassSession) error
	Update(ctx context.Context, session *ClassSession) error
	AssignSubstitute(ctx context.Context, sessionID, teacherID int) error
}
