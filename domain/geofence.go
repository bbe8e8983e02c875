package domain

import (
	"context"
	"time"
)

// Geofence restricts where check-ins may happen. Only the active row is
// consulted; no active row means no restriction.
type Geofence struct {
	GeofenceID   int       `gorm:"primaryKey;autoIncrement" json:"geofence_id"`
	Label        string    `gorm:"type:varchar(100)" json:"label"`
	Latitude     float64   `gorm:"not null" json:"latitude" valid:"required~Latitude is required"`
	Longitude    float64   `gorm:"not null" json:"longitude" valid:"required~Longitude is required"`
	RadiusMeters float64   `gorm:"not null" json:"radius_meters" valid:"required~Radius is required"`
	IsActive     bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HolidayEvent stops check-ins and reconciliation for a date. A nil
// ClassID means school-wide.
type HolidayEvent struct {
	HolidayID int       `gorm:"primaryKey;autoIncrement" json:"holiday_id"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	Reason    string    `gorm:"type:varchar(200);not null" json:"reason" valid:"required~Reason is required"`
	Type      string    `gorm:"type:varchar(30);not null" json:"type" valid:"required~Type is required"`
	ClassID   *int      `json:"class_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SchoolWide reports whether the holiday applies to every class.
func (h *HolidayEvent) SchoolWide() bool { return h.ClassID == nil }

type GeofenceRepo interface {
	// FindActive returns the consulted geofence, or nil when check-ins
	// are unrestricted.
	FindActive(ctx context.Context) (*Geofence, error)
	Save(ctx context.Context, fence *Geofence) error
	Activate(ctx context.Context, id int) error
}

type HolidayRepo interface {
	ListForDate(ctx context.Context, date time.Time) ([]HolidayEvent, error)
	Create(ctx context.Context, holiday *HolidayEvent) error
	Delete(ctx context.Context, id int) error
}
