package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"presensi/domain"
)

type geofenceRepository struct {
	db *gorm.DB
}

func NewGeofenceRepository(database *gorm.DB) domain.GeofenceRepo {
	return &geofenceRepository{
		db: database,
	}
}

func (gr *geofenceRepository) FindActive(ctx context.Context) (*domain.Geofence, error) {
	var fence domain.Geofence

	err := gr.db.WithContext(ctx).Where("is_active = true").First(&fence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying geofence: %w", err)
	}

	return &fence, nil
}

func (gr *geofenceRepository) Save(ctx context.Context, fence *domain.Geofence) error {
	if err := gr.db.WithContext(ctx).Save(fence).Error; err != nil {
		return fmt.Errorf("could not save geofence: %w", err)
	}
	return nil
}

// Activate makes one fence the consulted row and deactivates the rest.
func (gr *geofenceRepository) Activate(ctx context.Context, id int) error {
	return gr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Geofence{}).Where("is_active = true").Update("is_active", false).Error; err != nil {
			return fmt.Errorf("could not deactivate geofences: %w", err)
		}
		result := tx.Model(&domain.Geofence{}).Where("geofence_id = ?", id).Update("is_active", true)
		if result.Error != nil {
			return fmt.Errorf("could not activate geofence: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

type holidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(database *gorm.DB) domain.HolidayRepo {
	return &holidayRepository{
		db: database,
	}
}

func (hr *holidayRepository) ListForDate(ctx context.Context, date time.Time) ([]domain.HolidayEvent, error) {
	var holidays []domain.HolidayEvent

	err := hr.db.WithContext(ctx).
		Where("date = ?", date.Format(dateLayout)).
		Find(&holidays).Error
	if err != nil {
		return nil, fmt.Errorf("error listing holidays: %w", err)
	}

	return holidays, nil
}

func (hr *holidayRepository) Create(ctx context.Context, holiday *domain.HolidayEvent) error {
	if err := hr.db.WithContext(ctx).Create(holiday).Error; err != nil {
		return fmt.Errorf("could not insert holiday: %w", err)
	}
	return nil
}

func (hr *holidayRepository) Delete(ctx context.Context, id int) error {
	result := hr.db.WithContext(ctx).Delete(&domain.HolidayEvent{}, "holiday_id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("could not delete holiday: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) domain.UserRepo {
	return &userRepository{
		db: database,
	}
}

func (ur *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User

	err := ur.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}

	return &user, nil
}
