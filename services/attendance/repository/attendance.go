package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"presensi/domain"
)

type teacherAttendanceRepository struct {
	db *gorm.DB
}

func NewTeacherAttendanceRepository(database *gorm.DB) domain.TeacherAttendanceRepo {
	return &teacherAttendanceRepository{
		db: database,
	}
}

func (tr *teacherAttendanceRepository) FindOpenSessionRow(ctx context.Context, teacherID int) (*domain.TeacherAttendance, *domain.ClassSession, error) {
	var row domain.TeacherAttendance

	err := tr.db.WithContext(ctx).
		Joins("JOIN class_sessions ON class_sessions.session_id = teacher_attendances.session_id").
		Where("teacher_attendances.teacher_id = ?", teacherID).
		Where("teacher_attendances.session_id IS NOT NULL").
		Where("teacher_attendances.check_out_time IS NULL").
		Where("class_sessions.status = ?", domain.SessionOngoing).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("error querying open session row: %w", err)
	}

	var session domain.ClassSession
	err = tr.db.WithContext(ctx).Preload("Schedule").
		First(&session, "session_id = ?", *row.SessionID).Error
	if err != nil {
		return nil, nil, fmt.Errorf("error loading open session: %w", err)
	}

	return &row, &session, nil
}

func (tr *teacherAttendanceRepository) FindBySession(ctx context.Context, teacherID, sessionID int) (*domain.TeacherAttendance, error) {
	var row domain.TeacherAttendance

	err := tr.db.WithContext(ctx).
		Where("teacher_id = ? AND session_id = ?", teacherID, sessionID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying session attendance: %w", err)
	}

	return &row, nil
}

func (tr *teacherAttendanceRepository) FindRegular(ctx context.Context, teacherID int, date time.Time) (*domain.TeacherAttendance, error) {
	var row domain.TeacherAttendance

	err := tr.db.WithContext(ctx).
		Where("teacher_id = ? AND date = ? AND session_id IS NULL", teacherID, date.Format(dateLayout)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying regular attendance: %w", err)
	}

	return &row, nil
}

func (tr *teacherAttendanceRepository) Create(ctx context.Context, row *domain.TeacherAttendance) error {
	if err := tr.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("could not insert attendance: %w", err)
	}
	return nil
}

func (tr *teacherAttendanceRepository) Update(ctx context.Context, row *domain.TeacherAttendance) error {
	if err := tr.db.WithContext(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("could not update attendance: %w", err)
	}
	return nil
}

type studentAttendanceRepository struct {
	db *gorm.DB
}

func NewStudentAttendanceRepository(database *gorm.DB) domain.StudentAttendanceRepo {
	return &studentAttendanceRepository{
		db: database,
	}
}

func (sr *studentAttendanceRepository) ListBySession(ctx context.Context, sessionID int) ([]domain.StudentAttendance, error) {
	var rows []domain.StudentAttendance

	err := sr.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("student_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error listing student attendance: %w", err)
	}

	return rows, nil
}

func (sr *studentAttendanceRepository) Upsert(ctx context.Context, row *domain.StudentAttendance) error {
	err := sr.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "marked_at", "marked_by"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("could not upsert student attendance: %w", err)
	}
	return nil
}
