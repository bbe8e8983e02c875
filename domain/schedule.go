package domain

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Schedule is a recurring weekly teaching slot. Times are local clock
// strings with minute resolution ("07:00"). At most one schedule may
// exist per (teacher, day, start time, academic year).
type Schedule struct {
	ScheduleID   int            `gorm:"primaryKey;autoIncrement" json:"schedule_id"`
	TeacherID    int            `gorm:"not null;uniqueIndex:uq_schedule_slot" json:"teacher_id" valid:"required~Teacher is required"`
	ClassID      int            `gorm:"not null" json:"class_id" valid:"required~Class is required"`
	SubjectID    int            `gorm:"not null" json:"subject_id" valid:"required~Subject is required"`
	DayOfWeek    int            `gorm:"not null;uniqueIndex:uq_schedule_slot" json:"day_of_week" valid:"required~Day of week is required,range(1|7)~Day of week must be 1-7"`
	StartTime    string         `gorm:"type:varchar(5);not null;uniqueIndex:uq_schedule_slot" json:"start_time" valid:"required~Start time is required"`
	EndTime      string         `gorm:"type:varchar(5);not null" json:"end_time" valid:"required~End time is required"`
	AcademicYear string         `gorm:"type:varchar(9);not null;uniqueIndex:uq_schedule_slot" json:"academic_year" valid:"required~Academic year is required"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// WorkingHour is a teacher's daily office-hours slot, consulted only by
// the reconciliation sweep's regular pass.
type WorkingHour struct {
	WorkingHourID int       `gorm:"primaryKey;autoIncrement" json:"working_hour_id"`
	TeacherID     int       `gorm:"not null;uniqueIndex:uq_working_hour" json:"teacher_id" valid:"required~Teacher is required"`
	DayOfWeek     int       `gorm:"not null;uniqueIndex:uq_working_hour" json:"day_of_week" valid:"required~Day of week is required,range(1|7)~Day of week must be 1-7"`
	StartTime     string    `gorm:"type:varchar(5);not null" json:"start_time" valid:"required~Start time is required"`
	EndTime       string    `gorm:"type:varchar(5);not null" json:"end_time" valid:"required~End time is required"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ParseClock splits a "HH:MM" string.
func ParseClock(hhmm string) (hour, minute int, err error) {
	if _, err = fmt.Sscanf(hhmm, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", hhmm, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock time %q", hhmm)
	}
	return hour, minute, nil
}

/// AtClock places a "HH:MM" string on the given calendar date, keeping
// the date's location. Invalid strings resolve to midnight.
func AtClock(date time.Time, hhmm string) time.Time {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		hour, minute = 0, 0
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

type ScheduleFilter struct {
	TeacherID int
	ClassID   int
	DayOfWeek int
}

type ScheduleRepo interface {
	// FindCandidates returns the active schedules for one class, teacher
	// and weekday ordered by start time ascending.
	FindCandidates(ctx context.Context, classID, teacherID, dayOfWeek int) ([]Schedule, error)
	FindByID(ctx context.Context, id int) (*Schedule, error)
	List(ctx context.Context, filter ScheduleFilter) ([]Schedule, error)
	Create(ctx context.Context, schedule *Schedule) error
	Update(ctx context.Context, schedule *Schedule) error
	Delete(ctx context.Context, id int) error
}

type WorkingHourRepo interface {
	ListByDay(ctx context.Context, dayOfWeek int) ([]WorkingHour, error)
	List(ctx context.Context, teacherID int) ([]WorkingHour, error)
	Create(ctx context.Context, wh *WorkingHour) error
	Delete(ctx context.Context, id int) error
}
