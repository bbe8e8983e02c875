package domain

import "context"

// Store aggregates the repositories over one backing database. WithTx
// runs fn against a store bound to a single transaction; returning an
// error rolls everything back. Check-in and check-out run their whole
// read-then-write sequence inside WithTx so a crash or a concurrent
// duplicate scan can never leave a half-created session/attendance
// pair. The partial unique indexes are the last-resort backstop if two
// attempts race past the guard.
type Store interface {
	Schedules() ScheduleRepo
	WorkingHours() WorkingHourRepo
	Sessions() SessionRepo
	TeacherAttendance() TeacherAttendanceRepo
	StudentAttendance() StudentAttendanceRepo
	Classes() ClassRepo
	Geofences() GeofenceRepo
	Holidays() HolidayRepo
	Users() UserRepo
	WithTx(ctx context.Context, fn func(Store) error) error
}
