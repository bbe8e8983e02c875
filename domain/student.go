package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// SchoolClass carries the rotating QR secret teachers scan to check in.
// qr_code_data is opaque to the core; admins regenerate it at will and
// stale payloads stop matching.
type SchoolClass struct {
	ClassID    int            `gorm:"primaryKey;autoIncrement" json:"class_id"`
	Name       string         `gorm:"type:varchar(50);not null;unique" json:"name" valid:"required~Name is required"`
	Grade      string         `gorm:"type:varchar(10)" json:"grade"`
	QRCodeData string         `gorm:"type:varchar(64);not null" json:"-"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Student struct {
	StudentID  int            `gorm:"primaryKey;autoIncrement" json:"student_id"`
	ClassID    int            `gorm:"not null;index" json:"class_id" valid:"required~Class is required"`
	ExternalID string         `gorm:"type:varchar(30);not null;unique" json:"external_id" valid:"required~Student number is required"`
	Name       string         `gorm:"type:varchar(150);not null" json:"name" valid:"required~Name is required"`
	Gender     string         `gorm:"type:varchar(10);not null" json:"gender" valid:"required~Gender is required,in(male|female)~Invalid gender"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type ClassRepo interface {
	FindByID(ctx context.Context, id int) (*SchoolClass, error)
	List(ctx context.Context) ([]SchoolClass, error)
	Roster(ctx context.Context, classID int) ([]Student, error)
	UpdateQRToken(ctx context.Context, classID int, token string) error
}
