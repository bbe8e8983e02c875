package config

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"presensi/domain"
)

func BootDB() (*gorm.DB, error) {
	url := GetDatabaseURL()

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	err = db.AutoMigrate(
		&domain.SchoolClass{},
		&domain.Student{},
		&domain.Schedule{},
		&domain.WorkingHour{},
		&domain.ClassSession{},
		&domain.TeacherAttendance{},
		&domain.StudentAttendance{},
		&domain.Geofence{},
		&domain.HolidayEvent{},
		&domain.User{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := ensureIndexes(); err != nil {
		return nil, err
	}

	return db, nil
}

// ensureIndexes creates the two partial unique indexes that back the
// teacher-attendance variants. AutoMigrate cannot express a partial
// index, so this runs raw SQL over a plain connection: at most one
// regular row per (teacher, date) and at most one session row per
// (teacher, session).
func ensureIndexes() error {
	sqlDB, err := sql.Open("postgres", GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	query := `
	CREATE UNIQUE INDEX IF NOT EXISTS uq_teacher_attendance_regular
		ON teacher_attendances (teacher_id, date)
		WHERE session_id IS NULL;
	CREATE UNIQUE INDEX IF NOT EXISTS uq_teacher_attendance_session
		ON teacher_attendances (teacher_id, session_id)
		WHERE session_id IS NOT NULL;
	`
	if _, err := sqlDB.Exec(query); err != nil {
		return fmt.Errorf("failed to create partial indexes: %w", err)
	}

	return nil
}
