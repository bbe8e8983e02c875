package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"presensi/domain"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(database *gorm.DB) domain.SessionRepo {
	return &sessionRepository{
		db: database,
	}
}

func (sr *sessionRepository) FindByID(ctx context.Context, id int) (*domain.ClassSession, error) {
	var session domain.ClassSession

	err := sr.db.WithContext(ctx).Preload("Schedule").First(&session, "session_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying session: %w", err)
	}

	return &session, nil
}

func (sr *sessionRepository) FindByScheduleAndDate(ctx context.Context, scheduleID int, date time.Time) (*domain.ClassSession, error) {
	var session domain.ClassSession

	err := sr.db.WithContext(ctx).Preload("Schedule").
		Where("schedule_id = ? AND date = ?", scheduleID, date.Format(dateLayout)).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying session occurrence: %w", err)
	}

	return &session, nil
}

func (sr *sessionRepository) FindSubstituteSession(ctx context.Context, teacherID, classID int, date time.Time) (*domain.ClassSession, error) {
	var session domain.ClassSession

	err := sr.db.WithContext(ctx).Preload("Schedule").
		Joins("JOIN schedules ON schedules.schedule_id = class_sessions.schedule_id").
		Where("class_sessions.substitute_teacher_id = ? AND class_sessions.date = ?", teacherID, date.Format(dateLayout)).
		Where("schedules.class_id = ?", classID).
		Where("class_sessions.status NOT IN ?", []domain.SessionStatus{domain.SessionCompleted, domain.SessionCancelled}).
		Order("schedules.start_time ASC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying substitute session: %w", err)
	}

	return &session, nil
}

func (sr *sessionRepository) ListByDate(ctx context.Context, date time.Time, statuses ...domain.SessionStatus) ([]domain.ClassSession, error) {
	var sessions []domain.ClassSession

	query := sr.db.WithContext(ctx).Preload("Schedule").
		Where("date = ?", date.Format(dateLayout))
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	err := query.Order("session_id ASC").Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}

	return sessions, nil
}

func (sr *sessionRepository) ListForTeacher(ctx context.Context, teacherID int, date time.Time) ([]domain.ClassSession, error) {
	var sessions []domain.ClassSession

	err := sr.db.WithContext(ctx).Preload("Schedule").
		Joins("JOIN schedules ON schedules.schedule_id = class_sessions.schedule_id").
		Where("class_sessions.date = ?", date.Format(dateLayout)).
		Where("(schedules.teacher_id = ? AND class_sessions.substitute_teacher_id IS NULL) OR class_sessions.substitute_teacher_id = ?", teacherID, teacherID).
		Order("schedules.start_time ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("error listing teacher sessions: %w", err)
	}

	return sessions, nil
}

func (sr *sessionRepository) Create(ctx context.Context, session *domain.ClassSession) error {
	if err := sr.db.WithContext(ctx).Omit("Schedule").Create(session).Error; err != nil {
		return fmt.Errorf("could not insert session: %w", err)
	}
	return nil
}

func (sr *sessionRepository) Update(ctx context.Context, session *domain.ClassSession) error {
	if err := sr.db.WithContext(ctx).Omit("Schedule").Save(session).Error; err != nil {
		return fmt.Errorf("could not update session: %w", err)
	}
	return nil
}

func (sr *sessionRepository) AssignSubstitute(ctx context.Context, sessionID, teacherID int) error {
	result := sr.db.WithContext(ctx).Model(&domain.ClassSession{}).
		Where("session_id = ?", sessionID).
		Update("substitute_teacher_id", teacherID)
	if result.Error != nil {
		return fmt.Errorf("could not assign substitute: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
