package usecase

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"presensi/domain"
)

// memStore backs the use-case tests with plain slices. WithTx hands the
// callback the store itself; rollback behavior is not simulated because
// the use cases under test only mutate after all gates pass.
type memStore struct {
	schedules    []domain.Schedule
	workingHours []domain.WorkingHour
	sessions     []*domain.ClassSession
	teacherRows  []*domain.TeacherAttendance
	studentRows  []*domain.StudentAttendance
	classes      []domain.SchoolClass
	students     []domain.Student
	fences       []*domain.Geofence
	holidays     []domain.HolidayEvent
	users        []domain.User

	nextSessionID    int
	nextAttendanceID int
}

func newMemStore() *memStore {
	return &memStore{nextSessionID: 1, nextAttendanceID: 1}
}

func (m *memStore) Schedules() domain.ScheduleRepo                { return &memSchedules{m} }
func (m *memStore) WorkingHours() domain.WorkingHourRepo          { return &memWorkingHours{m} }
func (m *memStore) Sessions() domain.SessionRepo                  { return &memSessions{m} }
func (m *memStore) TeacherAttendance() domain.TeacherAttendanceRepo {
	return &memTeacherAttendance{m}
}
func (m *memStore) StudentAttendance() domain.StudentAttendanceRepo {
	return &memStudentAttendance{m}
}
func (m *memStore) Classes() domain.ClassRepo    { return &memClasses{m} }
func (m *memStore) Geofences() domain.GeofenceRepo { return &memGeofences{m} }
func (m *memStore) Holidays() domain.HolidayRepo   { return &memHolidays{m} }
func (m *memStore) Users() domain.UserRepo         { return &memUsers{m} }

func (m *memStore) WithTx(_ context.Context, fn func(domain.Store) error) error {
	return fn(m)
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// ── schedules ──

type memSchedules struct{ s *memStore }

func (r *memSchedules) FindCandidates(_ context.Context, classID, teacherID, dayOfWeek int) ([]domain.Schedule, error) {
	var out []domain.Schedule
	for _, sch := range r.s.schedules {
		if sch.ClassID == classID && sch.TeacherID == teacherID && sch.DayOfWeek == dayOfWeek && sch.IsActive {
			out = append(out, sch)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].StartTime < out[j-1].StartTime; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (r *memSchedules) FindByID(_ context.Context, id int) (*domain.Schedule, error) {
	for i := range r.s.schedules {
		if r.s.schedules[i].ScheduleID == id {
			return &r.s.schedules[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memSchedules) List(_ context.Context, _ domain.ScheduleFilter) ([]domain.Schedule, error) {
	return r.s.schedules, nil
}

func (r *memSchedules) Create(_ context.Context, schedule *domain.Schedule) error {
	schedule.ScheduleID = len(r.s.schedules) + 1
	r.s.schedules = append(r.s.schedules, *schedule)
	return nil
}

func (r *memSchedules) Update(_ context.Context, schedule *domain.Schedule) error {
	for i := range r.s.schedules {
		if r.s.schedules[i].ScheduleID == schedule.ScheduleID {
			r.s.schedules[i] = *schedule
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memSchedules) Delete(_ context.Context, id int) error {
	for i := range r.s.schedules {
		if r.s.schedules[i].ScheduleID == id {
			r.s.schedules = append(r.s.schedules[:i], r.s.schedules[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── working hours ──

type memWorkingHours struct{ s *memStore }

func (r *memWorkingHours) ListByDay(_ context.Context, dayOfWeek int) ([]domain.WorkingHour, error) {
	var out []domain.WorkingHour
	for _, wh := range r.s.workingHours {
		if wh.DayOfWeek == dayOfWeek {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (r *memWorkingHours) List(_ context.Context, _ int) ([]domain.WorkingHour, error) {
	return r.s.workingHours, nil
}

func (r *memWorkingHours) Create(_ context.Context, wh *domain.WorkingHour) error {
	wh.WorkingHourID = len(r.s.workingHours) + 1
	r.s.workingHours = append(r.s.workingHours, *wh)
	return nil
}

func (r *memWorkingHours) Delete(_ context.Context, id int) error {
	for i := range r.s.workingHours {
		if r.s.workingHours[i].WorkingHourID == id {
			r.s.workingHours = append(r.s.workingHours[:i], r.s.workingHours[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── sessions ──

type memSessions struct{ s *memStore }

func (r *memSessions) attachSchedule(session *domain.ClassSession) {
	for _, sch := range r.s.schedules {
		if sch.ScheduleID == session.ScheduleID {
			session.Schedule = sch
			return
		}
	}
}

func (r *memSessions) FindByID(_ context.Context, id int) (*domain.ClassSession, error) {
	for _, session := range r.s.sessions {
		if session.SessionID == id {
			r.attachSchedule(session)
			return session, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memSessions) FindByScheduleAndDate(_ context.Context, scheduleID int, date time.Time) (*domain.ClassSession, error) {
	for _, session := range r.s.sessions {
		if session.ScheduleID == scheduleID && sameDate(session.Date, date) {
			r.attachSchedule(session)
			return session, nil
		}
	}
	return nil, nil
}

func (r *memSessions) FindSubstituteSession(_ context.Context, teacherID, classID int, date time.Time) (*domain.ClassSession, error) {
	for _, session := range r.s.sessions {
		if session.SubstituteTeacherID == nil || *session.SubstituteTeacherID != teacherID {
			continue
		}
		if !sameDate(session.Date, date) || session.Status.Terminal() {
			continue
		}
		r.attachSchedule(session)
		if session.Schedule.ClassID == classID {
			return session, nil
		}
	}
	return nil, nil
}

func (r *memSessions) ListByDate(_ context.Context, date time.Time, statuses ...domain.SessionStatus) ([]domain.ClassSession, error) {
	var out []domain.ClassSession
	for _, session := range r.s.sessions {
		if !sameDate(session.Date, date) {
			continue
		}
		for _, status := range statuses {
			if session.Status == status {
				r.attachSchedule(session)
				out = append(out, *session)
				break
			}
		}
	}
	return out, nil
}

func (r *memSessions) ListForTeacher(_ context.Context, teacherID int, date time.Time) ([]domain.ClassSession, error) {
	var out []domain.ClassSession
	for _, session := range r.s.sessions {
		if !sameDate(session.Date, date) {
			continue
		}
		r.attachSchedule(session)
		if session.EffectiveTeacherID() == teacherID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (r *memSessions) Create(_ context.Context, session *domain.ClassSession) error {
	session.SessionID = r.s.nextSessionID
	r.s.nextSessionID++
	r.attachSchedule(session)
	r.s.sessions = append(r.s.sessions, session)
	return nil
}

func (r *memSessions) Update(_ context.Context, session *domain.ClassSession) error {
	for i, existing := range r.s.sessions {
		if existing.SessionID == session.SessionID {
			r.s.sessions[i] = session
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memSessions) AssignSubstitute(_ context.Context, sessionID, teacherID int) error {
	for _, session := range r.s.sessions {
		if session.SessionID == sessionID {
			id := teacherID
			session.SubstituteTeacherID = &id
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── teacher attendance ──

type memTeacherAttendance struct{ s *memStore }

func (r *memTeacherAttendance) FindOpenSessionRow(_ context.Context, teacherID int) (*domain.TeacherAttendance, *domain.ClassSession, error) {
	for _, row := range r.s.teacherRows {
		if row.TeacherID != teacherID || row.SessionID == nil || row.CheckOutTime != nil {
			continue
		}
		for _, session := range r.s.sessions {
			if session.SessionID == *row.SessionID && session.Status == domain.SessionOngoing {
				(&memSessions{r.s}).attachSchedule(session)
				return row, session, nil
			}
		}
	}
	return nil, nil, nil
}

func (r *memTeacherAttendance) FindBySession(_ context.Context, teacherID, sessionID int) (*domain.TeacherAttendance, error) {
	for _, row := range r.s.teacherRows {
		if row.TeacherID == teacherID && row.SessionID != nil && *row.SessionID == sessionID {
			return row, nil
		}
	}
	return nil, nil
}

func (r *memTeacherAttendance) FindRegular(_ context.Context, teacherID int, date time.Time) (*domain.TeacherAttendance, error) {
	for _, row := range r.s.teacherRows {
		if row.TeacherID == teacherID && row.SessionID == nil && sameDate(row.Date, date) {
			return row, nil
		}
	}
	return nil, nil
}

func (r *memTeacherAttendance) Create(_ context.Context, row *domain.TeacherAttendance) error {
	row.AttendanceID = r.s.nextAttendanceID
	r.s.nextAttendanceID++
	r.s.teacherRows = append(r.s.teacherRows, row)
	return nil
}

func (r *memTeacherAttendance) Update(_ context.Context, row *domain.TeacherAttendance) error {
	for i, existing := range r.s.teacherRows {
		if existing.AttendanceID == row.AttendanceID {
			r.s.teacherRows[i] = row
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── student attendance ──

type memStudentAttendance struct{ s *memStore }

func (r *memStudentAttendance) ListBySession(_ context.Context, sessionID int) ([]domain.StudentAttendance, error) {
	var out []domain.StudentAttendance
	for _, row := range r.s.studentRows {
		if row.SessionID == sessionID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *memStudentAttendance) Upsert(_ context.Context, row *domain.StudentAttendance) error {
	for _, existing := range r.s.studentRows {
		if existing.StudentID == row.StudentID && existing.SessionID == row.SessionID {
			existing.Status = row.Status
			existing.MarkedAt = row.MarkedAt
			existing.MarkedBy = row.MarkedBy
			return nil
		}
	}
	copied := *row
	r.s.studentRows = append(r.s.studentRows, &copied)
	return nil
}

// ── classes ──

type memClasses struct{ s *memStore }

func (r *memClasses) FindByID(_ context.Context, id int) (*domain.SchoolClass, error) {
	for i := range r.s.classes {
		if r.s.classes[i].ClassID == id {
			return &r.s.classes[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memClasses) List(_ context.Context) ([]domain.SchoolClass, error) {
	return r.s.classes, nil
}

func (r *memClasses) Roster(_ context.Context, classID int) ([]domain.Student, error) {
	var out []domain.Student
	for _, student := range r.s.students {
		if student.ClassID == classID {
			out = append(out, student)
		}
	}
	return out, nil
}

func (r *memClasses) UpdateQRToken(_ context.Context, classID int, token string) error {
	for i := range r.s.classes {
		if r.s.classes[i].ClassID == classID {
			r.s.classes[i].QRCodeData = token
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── geofences / holidays / users ──

type memGeofences struct{ s *memStore }

func (r *memGeofences) FindActive(_ context.Context) (*domain.Geofence, error) {
	for _, fence := range r.s.fences {
		if fence.IsActive {
			return fence, nil
		}
	}
	return nil, nil
}

func (r *memGeofences) Save(_ context.Context, fence *domain.Geofence) error {
	fence.GeofenceID = len(r.s.fences) + 1
	r.s.fences = append(r.s.fences, fence)
	return nil
}

func (r *memGeofences) Activate(_ context.Context, id int) error {
	for _, fence := range r.s.fences {
		fence.IsActive = fence.GeofenceID == id
	}
	return nil
}

type memHolidays struct{ s *memStore }

func (r *memHolidays) ListForDate(_ context.Context, date time.Time) ([]domain.HolidayEvent, error) {
	var out []domain.HolidayEvent
	for _, h := range r.s.holidays {
		if sameDate(h.Date, date) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memHolidays) Create(_ context.Context, holiday *domain.HolidayEvent) error {
	holiday.HolidayID = len(r.s.holidays) + 1
	r.s.holidays = append(r.s.holidays, *holiday)
	return nil
}

func (r *memHolidays) Delete(_ context.Context, id int) error {
	for i := range r.s.holidays {
		if r.s.holidays[i].HolidayID == id {
			r.s.holidays = append(r.s.holidays[:i], r.s.holidays[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memUsers struct{ s *memStore }

func (r *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for i := range r.s.users {
		if r.s.users[i].Username == username {
			return &r.s.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// ── clock / events / logger ──

// fixedClock pins "now" for deterministic window math.
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Today() time.Time {
	return time.Date(c.now.Year(), c.now.Month(), c.now.Day(), 0, 0, 0, 0, c.now.Location())
}

func (c *fixedClock) DayOfWeek(t time.Time) int {
	dow := int(t.Weekday())
	if dow == 0 {
		return 7
	}
	return dow
}

type eventRecorder struct{ events []domain.Event }

func (r *eventRecorder) Publish(event domain.Event) {
	r.events = append(r.events, event)
}

func (r *eventRecorder) typesSeen() []domain.EventType {
	out := make([]domain.EventType, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Type)
	}
	return out
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
