package domain

import (
	"context"
	"time"
)

type AttendanceStatus string

const (
	StatusPresent    AttendanceStatus = "present"
	StatusLate       AttendanceStatus = "late"
	StatusAbsent     AttendanceStatus = "absent"
	StatusSick       AttendanceStatus = "sick"
	StatusPermission AttendanceStatus = "permission"
	StatusAlpha      AttendanceStatus = "alpha"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusSick, StatusPermission, StatusAlpha:
		return true
	default:
		return false
	}
}

// LeaveStatus reports whether the status represents an excused day
// (sick or permission) that the sweep cascades onto sessions.
func (s AttendanceStatus) LeaveStatus() bool {
	return s == StatusSick || s == StatusPermission
}

// TeacherAttendance is one attendance record. SessionID discriminates
// the two variants: nil means a regular (per-day) record, non-nil a
// session-scoped one. Two partial unique indexes back the variants:
// at most one regular row per (teacher, date) and at most one session
// row per (teacher, session). See config.EnsureIndexes.
type TeacherAttendance struct {
	AttendanceID          int              `gorm:"primaryKey;autoIncrement" json:"attendance_id"`
	TeacherID             int              `gorm:"not null;index" json:"teacher_id"`
	SessionID             *int             `gorm:"index" json:"session_id,omitempty"`
	Date                  time.Time        `gorm:"type:date;not null;index" json:"date"`
	CheckInTime           *time.Time       `json:"check_in_time,omitempty"`
	CheckOutTime          *time.Time       `json:"check_out_time,omitempty"`
	Status                AttendanceStatus `gorm:"type:varchar(10);not null" json:"status"`
	LateMinutes           int              `gorm:"not null;default:0" json:"late_minutes"`
	EarlyCheckoutMinutes  int              `gorm:"not null;default:0" json:"early_checkout_minutes"`
	Latitude              *float64         `json:"latitude,omitempty"`
	Longitude             *float64         `json:"longitude,omitempty"`
	Notes                 string           `gorm:"type:text" json:"notes"`
	CreatedAt             time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// StudentAttendance is one per-student mark inside a session.
type StudentAttendance struct {
	StudentAttendanceID int              `gorm:"primaryKey;autoIncrement" json:"student_attendance_id"`
	StudentID           int              `gorm:"not null;uniqueIndex:uq_student_session" json:"student_id"`
	SessionID           int              `gorm:"not null;uniqueIndex:uq_student_session" json:"session_id"`
	Status              AttendanceStatus `gorm:"type:varchar(10);not null" json:"status"`
	MarkedAt            time.Time        `gorm:"not null" json:"marked_at"`
	MarkedBy            int              `gorm:"not null" json:"marked_by"`
}

// ActiveSessionInfo identifies a teacher's unfinished session so the
// client can redirect there instead of failing silently.
type ActiveSessionInfo struct {
	SessionID   int        `json:"session_id"`
	ClassID     int        `json:"class_id"`
	ClassName   string     `json:"class_name"`
	SubjectID   int        `json:"subject_id"`
	Date        time.Time  `json:"date"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	PlannedEnd  time.Time  `json:"planned_end"`
	CheckInTime *time.Time `json:"check_in_time,omitempty"`
}

type TeacherAttendanceRepo interface {
	// FindOpenSessionRow is the active-session guard query: the
	// teacher's session-scoped row without checkout whose session is
	// still ongoing, or nil.
	FindOpenSessionRow(ctx context.Context, teacherID int) (*TeacherAttendance, *ClassSession, error)
	FindBySession(ctx context.Context, teacherID, sessionID int) (*TeacherAttendance, error)
	FindRegular(ctx context.Context, teacherID int, date time.Time) (*TeacherAttendance, error)
	Create(ctx context.Context, row *TeacherAttendance) error
	Update(ctx context.Context, row *TeacherAttendance) error
}

type StudentAttendanceRepo interface {
	ListBySession(ctx context.Context, sessionID int) ([]StudentAttendance, error)
	Upsert(ctx context.Context, row *StudentAttendance) error
}
