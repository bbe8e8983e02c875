package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"presensi/domain"
)

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(database *gorm.DB) domain.ScheduleRepo {
	return &scheduleRepository{
		db: database,
	}
}

func (sr *scheduleRepository) FindCandidates(ctx context.Context, classID, teacherID, dayOfWeek int) ([]domain.Schedule, error) {
	var schedules []domain.Schedule

	err := sr.db.WithContext(ctx).
		Where("class_id = ? AND teacher_id = ? AND day_of_week = ? AND is_active = true", classID, teacherID, dayOfWeek).
		Order("start_time ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("error querying candidate schedules: %w", err)
	}

	return schedules, nil
}

func (sr *scheduleRepository) FindByID(ctx context.Context, id int) (*domain.Schedule, error) {
	var schedule domain.Schedule

	err := sr.db.WithContext(ctx).First(&schedule, "schedule_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying schedule: %w", err)
	}

	return &schedule, nil
}

func (sr *scheduleRepository) List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, error) {
	var schedules []domain.Schedule

	query := sr.db.WithContext(ctx)
	if filter.TeacherID != 0 {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.ClassID != 0 {
		query = query.Where("class_id = ?", filter.ClassID)
	}
	if filter.DayOfWeek != 0 {
		query = query.Where("day_of_week = ?", filter.DayOfWeek)
	}

	err := query.Order("day_of_week ASC, start_time ASC").Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("error listing schedules: %w", err)
	}

	return schedules, nil
}

func (sr *scheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	if err := sr.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("could not insert schedule: %w", err)
	}
	return nil
}

func (sr *scheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	if err := sr.db.WithContext(ctx).Save(schedule).Error; err != nil {
		return fmt.Errorf("could not update schedule: %w", err)
	}
	return nil
}

func (sr *scheduleRepository) Delete(ctx context.Context, id int) error {
	result := sr.db.WithContext(ctx).Delete(&domain.Schedule{}, "schedule_id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("could not delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type workingHourRepository struct {
	db *gorm.DB
}

func NewWorkingHourRepository(database *gorm.DB) domain.WorkingHourRepo {
	return &workingHourRepository{
		db: database,
	}
}

func (wr *workingHourRepository) ListByDay(ctx context.Context, dayOfWeek int) ([]domain.WorkingHour, error) {
	var rows []domain.WorkingHour

	err := wr.db.WithContext(ctx).
		Where("day_of_week = ?", dayOfWeek).
		Order("teacher_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error listing working hours: %w", err)
	}

	return rows, nil
}

func (wr *workingHourRepository) List(ctx context.Context, teacherID int) ([]domain.WorkingHour, error) {
	var rows []domain.WorkingHour

	query := wr.db.WithContext(ctx)
	if teacherID != 0 {
		query = query.Where("teacher_id = ?", teacherID)
	}

	err := query.Order("teacher_id ASC, day_of_week ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error listing working hours: %w", err)
	}

	return rows, nil
}

func (wr *workingHourRepository) Create(ctx context.Context, wh *domain.WorkingHour) error {
	if err := wr.db.WithContext(ctx).Create(wh).Error; err != nil {
		return fmt.Errorf("could not insert working hour: %w", err)
	}
	return nil
}

func (wr *workingHourRepository) Delete(ctx context.Context, id int) error {
	result := wr.db.WithContext(ctx).Delete(&domain.WorkingHour{}, "working_hour_id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("could not delete working hour: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
