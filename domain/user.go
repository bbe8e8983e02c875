package domain

import "context"

type User struct {
	UserID    int    `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username  string `gorm:"type:varchar(50);not null;unique" json:"username"`
	Password  string `gorm:"type:varchar(100);not null" json:"-"`
	Role      string `gorm:"type:varchar(20);not null" json:"role"`
	TeacherID *int   `json:"teacher_id,omitempty"`
}

type UserRepo interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}
