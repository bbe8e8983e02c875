package repository

import (
	"context"

	"gorm.io/gorm"

	"presensi/domain"
)

type store struct {
	db *gorm.DB
}

// NewStore wraps one gorm handle as the aggregated domain.Store.
func NewStore(db *gorm.DB) domain.Store {
	return &store{db: db}
}

func (s *store) Schedules() domain.ScheduleRepo          { return &scheduleRepository{db: s.db} }
func (s *store) WorkingHours() domain.WorkingHourRepo    { return &workingHourRepository{db: s.db} }
func (s *store) Sessions() domain.SessionRepo            { return &sessionRepository{db: s.db} }
func (s *store) TeacherAttendance() domain.TeacherAttendanceRepo {
	return &teacherAttendanceRepository{db: s.db}
}
func (s *store) StudentAttendance() domain.StudentAttendanceRepo {
	return &studentAttendanceRepository{db: s.db}
}
func (s *store) Classes() domain.ClassRepo   { return &classRepository{db: s.db} }
func (s *store) Geofences() domain.GeofenceRepo { return &geofenceRepository{db: s.db} }
func (s *store) Holidays() domain.HolidayRepo   { return &holidayRepository{db: s.db} }
func (s *store) Users() domain.UserRepo         { return &userRepository{db: s.db} }

// WithTx runs fn against a store bound to one transaction. An error
// from fn rolls the whole sequence back.
func (s *store) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}

const dateLayout = "2006-01-02"
