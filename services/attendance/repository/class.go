package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"presensi/domain"
)

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(database *gorm.DB) domain.ClassRepo {
	return &classRepository{
		db: database,
	}
}

func (cr *classRepository) FindByID(ctx context.Context, id int) (*domain.SchoolClass, error) {
	var class domain.SchoolClass

	err := cr.db.WithContext(ctx).First(&class, "class_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying class: %w", err)
	}

	return &class, nil
}

func (cr *classRepository) List(ctx context.Context) ([]domain.SchoolClass, error) {
	var classes []domain.SchoolClass

	err := cr.db.WithContext(ctx).Order("name ASC").Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}

	return classes, nil
}

func (cr *classRepository) Roster(ctx context.Context, classID int) ([]domain.Student, error) {
	var students []domain.Student

	err := cr.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("name ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("error querying roster: %w", err)
	}

	return students, nil
}

func (cr *classRepository) UpdateQRToken(ctx context.Context, classID int, token string) error {
	result := cr.db.WithContext(ctx).Model(&domain.SchoolClass{}).
		Where("class_id = ?", classID).
		Update("qr_code_data", token)
	if result.Error != nil {
		return fmt.Errorf("could not rotate class token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
