package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"presensi/domain"
)

var schoolZone = time.FixedZone("WIB", 7*3600)

// Monday.
func mondayAt(hhmm string) time.Time {
	base := time.Date(2025, 3, 3, 0, 0, 0, 0, schoolZone)
	return domain.AtClock(base, hhmm)
}

func classToken(classID int, token string) string {
	return fmt.Sprintf(`{"type":"class-session","id":%d,"token":%q}`, classID, token)
}

// newCheckInFixture seeds class 1 with teacher 7 owning two back-to-back
// Monday slots, 07:00-07:40 and 07:40-08:20.
func newCheckInFixture(now time.Time) (*memStore, *eventRecorder, domain.AttendanceUseCase) {
	store := newMemStore()
	store.classes = []domain.SchoolClass{
		{ClassID: 1, Name: "X IPA 1", QRCodeData: "tok-abc"},
		{ClassID: 2, Name: "X IPA 2", QRCodeData: "tok-def"},
	}
	store.students = []domain.Student{
		{StudentID: 11, ClassID: 1, ExternalID: "S-011", Name: "Ahmad", Gender: "male"},
		{StudentID: 12, ClassID: 1, ExternalID: "S-012", Name: "Bella", Gender: "female"},
	}
	store.schedules = []domain.Schedule{
		{ScheduleID: 1, TeacherID: 7, ClassID: 1, SubjectID: 3, DayOfWeek: 1, StartTime: "07:00", EndTime: "07:40", AcademicYear: "2024/2025", IsActive: true},
		{ScheduleID: 2, TeacherID: 7, ClassID: 1, SubjectID: 3, DayOfWeek: 1, StartTime: "07:40", EndTime: "08:20", AcademicYear: "2024/2025", IsActive: true},
	}

	recorder := &eventRecorder{}
	uc := NewAttendanceUseCase(store, &fixedClock{now: now}, recorder, quietLogger(), 5*time.Second)
	return store, recorder, uc
}

func policyCode(t *testing.T, err error) *domain.PolicyError {
	t.Helper()
	var policyErr *domain.PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected a policy error, got %v", err)
	}
	return policyErr
}

func TestCheckInCreatesSessionAndAttendance(t *testing.T) {
	store, recorder, uc := newCheckInFixture(mondayAt("07:00"))

	resp, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if resp.Status != domain.SessionOngoing {
		t.Errorf("session status = %s, want ongoing", resp.Status)
	}
	if resp.LateMinutes != 0 {
		t.Errorf("late minutes = %d, want 0", resp.LateMinutes)
	}
	if resp.AlreadyCheckedIn {
		t.Error("fresh check-in reported as already checked in")
	}
	if len(resp.Roster) != 2 {
		t.Errorf("roster size = %d, want 2", len(resp.Roster))
	}

	if len(store.sessions) != 1 || store.sessions[0].Status != domain.SessionOngoing {
		t.Fatalf("expected one ongoing session, got %+v", store.sessions)
	}
	if len(store.teacherRows) != 1 {
		t.Fatalf("expected one attendance row, got %d", len(store.teacherRows))
	}
	row := store.teacherRows[0]
	if row.SessionID == nil || *row.SessionID != resp.SessionID {
		t.Errorf("attendance row not bound to session %d", resp.SessionID)
	}
	if row.Status != domain.StatusPresent {
		t.Errorf("attendance status = %s, want present", row.Status)
	}

	types := recorder.typesSeen()
	if len(types) != 2 || types[0] != domain.EventSessionStatusChanged || types[1] != domain.EventTeacherCheckedIn {
		t.Errorf("events = %v", types)
	}
}

func TestCheckInWindowBoundary(t *testing.T) {
	// Eleven minutes early is refused, nine minutes early is accepted.
	_, _, uc := newCheckInFixture(mondayAt("06:49"))
	_, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if code := policyCode(t, err); code.Code != domain.CodeTooEarly {
		t.Fatalf("code = %s, want %s", code.Code, domain.CodeTooEarly)
	}

	_, _, uc = newCheckInFixture(mondayAt("06:51"))
	if _, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")}); err != nil {
		t.Fatalf("check-in nine minutes early failed: %v", err)
	}
}

func TestCheckInLateMinutes(t *testing.T) {
	_, _, uc := newCheckInFixture(mondayAt("07:12"))

	resp, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if resp.LateMinutes != 12 {
		t.Errorf("late minutes = %d, want 12", resp.LateMinutes)
	}
}

func TestCheckInCompletedSlotHandsOverToNext(t *testing.T) {
	store, _, uc := newCheckInFixture(mondayAt("07:41"))

	// First period already taught and closed; the scan must land on the
	// 07:40 slot, not trip over the finished one.
	today := mondayAt("00:00")
	store.sessions = append(store.sessions, &domain.ClassSession{
		SessionID: 99, ScheduleID: 1, Date: today, Status: domain.SessionCompleted,
	})
	store.nextSessionID = 100

	resp, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if resp.SessionID == 99 {
		t.Fatal("resolved the completed first-period session")
	}
	created := store.sessions[len(store.sessions)-1]
	if created.ScheduleID != 2 {
		t.Errorf("resolved schedule %d, want 2", created.ScheduleID)
	}
}

func TestCheckInIdempotentRescan(t *testing.T) {
	store, recorder, uc := newCheckInFixture(mondayAt("07:05"))

	first, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if err != nil {
		t.Fatalf("first check-in failed: %v", err)
	}
	eventsAfterFirst := len(recorder.events)

	second, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if err != nil {
		t.Fatalf("re-scan failed: %v", err)
	}
	if !second.AlreadyCheckedIn {
		t.Error("re-scan not reported as already checked in")
	}
	if second.SessionID != first.SessionID {
		t.Errorf("re-scan resolved session %d, want %d", second.SessionID, first.SessionID)
	}
	if !second.CheckInTime.Equal(first.CheckInTime) {
		t.Error("re-scan changed the recorded check-in time")
	}
	if len(store.teacherRows) != 1 {
		t.Errorf("attendance rows = %d, want 1", len(store.teacherRows))
	}
	if len(recorder.events) != eventsAfterFirst {
		t.Error("re-scan published new events")
	}
}

func TestCheckInActiveSessionGuard(t *testing.T) {
	store, _, uc := newCheckInFixture(mondayAt("07:05"))

	// Teacher 7 still has class 2's session open from earlier.
	today := mondayAt("00:00")
	store.schedules = append(store.schedules, domain.Schedule{
		ScheduleID: 3, TeacherID: 7, ClassID: 2, SubjectID: 4, DayOfWeek: 1,
		StartTime: "06:20", EndTime: "07:00", AcademicYear: "2024/2025", IsActive: true,
	})
	startTime := mondayAt("06:20")
	store.sessions = append(store.sessions, &domain.ClassSession{
		SessionID: 50, ScheduleID: 3, Date: today, StartTime: &startTime, Status: domain.SessionOngoing,
	})
	sid := 50
	store.teacherRows = append(store.teacherRows, &domain.TeacherAttendance{
		AttendanceID: 1, TeacherID: 7, SessionID: &sid, Date: today,
		CheckInTime: &startTime, Status: domain.StatusPresent,
	})
	store.nextAttendanceID = 2

	_, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if conflict.ActiveSession == nil || conflict.ActiveSession.SessionID != 50 {
		t.Errorf("conflict active session = %+v, want session 50", conflict.ActiveSession)
	}
}

func TestCheckInGeofence(t *testing.T) {
	store, _, uc := newCheckInFixture(mondayAt("07:00"))
	store.fences = append(store.fences, &domain.Geofence{
		GeofenceID: 1, Latitude: -6.2000, Longitude: 106.8000, RadiusMeters: 100, IsActive: true,
	})

	// Roughly 250m due north of the fence center.
	lat, lng := -6.19775, 106.8000
	_, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{
		QRData: classToken(1, "tok-abc"), Latitude: &lat, Longitude: &lng,
	})
	code := policyCode(t, err)
	if code.Code != domain.CodeGeofence {
		t.Fatalf("code = %s, want %s", code.Code, domain.CodeGeofence)
	}
	distance, ok := code.Details["distance_meters"].(float64)
	if !ok || distance < 200 || distance > 300 {
		t.Errorf("distance detail = %v, want ~250", code.Details["distance_meters"])
	}

	// Inside the radius passes.
	lat, lng = -6.2001, 106.8001
	if _, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{
		QRData: classToken(1, "tok-abc"), Latitude: &lat, Longitude: &lng,
	}); err != nil {
		t.Fatalf("check-in inside fence failed: %v", err)
	}
}

func TestCheckInWithoutCoordinatesSkipsGeofence(t *testing.T) {
	store, _, uc := newCheckInFixture(mondayAt("07:00"))
	store.fences = append(store.fences, &domain.Geofence{
		GeofenceID: 1, Latitude: -6.2, Longitude: 106.8, RadiusMeters: 100, IsActive: true,
	})

	if _, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")}); err != nil {
		t.Fatalf("check-in without coordinates failed: %v", err)
	}
}

func TestCheckInHoliday(t *testing.T) {
	store, _, uc := newCheckInFixture(mondayAt("07:00"))
	store.holidays = append(store.holidays, domain.HolidayEvent{
		HolidayID: 1, Date: mondayAt("00:00"), Reason: "Isra Mi'raj", Type: "national",
	})

	_, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if code := policyCode(t, err); code.Code != domain.CodeHoliday {
		t.Fatalf("code = %s, want %s", code.Code, domain.CodeHoliday)
	}
}

func TestCheckInClassScopedHoliday(t *testing.T) {
	store, _, uc := newCheckInFixture(mondayAt("07:00"))
	classID := 1
	store.holidays = append(store.holidays, domain.HolidayEvent{
		HolidayID: 1, Date: mondayAt("00:00"), Reason: "field trip", Type: "class", ClassID: &classID,
	})

	_, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if code := policyCode(t, err); code.Code != domain.CodeHoliday {
		t.Fatalf("code = %s, want %s", code.Code, domain.CodeHoliday)
	}
}

func TestCheckInRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name   string
		qrData string
	}{
		{"stale token", classToken(1, "tok-old")},
		{"unknown class", classToken(404, "tok-abc")},
		{"wrong type", `{"type":"student-card","id":1,"token":"tok-abc"}`},
		{"not json", "not a payload"},
		{"empty token", classToken(1, "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, uc := newCheckInFixture(mondayAt("07:00"))
			_, err := uc.CheckIn(context.Background(), 7, &domain.CheckInRequest{QRData: tc.qrData})
			if code := policyCode(t, err); code.Code != domain.CodeInvalidQR {
				t.Fatalf("code = %s, want %s", code.Code, domain.CodeInvalidQR)
			}
		})
	}
}

func TestCheckInNoSchedule(t *testing.T) {
	_, _, uc := newCheckInFixture(mondayAt("07:00"))

	// Teacher 8 holds no slot for class 1 and no substitute assignment.
	_, err := uc.CheckIn(context.Background(), 8, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if code := policyCode(t, err); code.Code != domain.CodeNoActiveSchedule {
		t.Fatalf("code = %s, want %s", code.Code, domain.CodeNoActiveSchedule)
	}
}

func TestCheckInSubstituteFallback(t *testing.T) {
	store, _, uc := newCheckInFixture(mondayAt("07:05"))

	// Teacher 9 covers teacher 7's first period today.
	subID := 9
	store.sessions = append(store.sessions, &domain.ClassSession{
		SessionID: 1, ScheduleID: 1, Date: mondayAt("00:00"),
		Status: domain.SessionScheduled, SubstituteTeacherID: &subID,
	})
	store.nextSessionID = 2

	resp, err := uc.CheckIn(context.Background(), 9, &domain.CheckInRequest{QRData: classToken(1, "tok-abc")})
	if err != nil {
		t.Fatalf("substitute check-in failed: %v", err)
	}
	if !resp.Substitute {
		t.Error("response not flagged as substitute")
	}
	if store.sessions[0].Status != domain.SessionOngoing {
		t.Errorf("session status = %s, want ongoing", store.sessions[0].Status)
	}
	row := store.teacherRows[0]
	if row.TeacherID != 9 {
		t.Errorf("attendance recorded for teacher %d, want 9", row.TeacherID)
	}
}

func TestActiveSessionReturnsNilWhenClean(t *testing.T) {
	_, _, uc := newCheckInFixture(mondayAt("07:00"))

	info, err := uc.ActiveSession(context.Background(), 7)
	if err != nil {
		t.Fatalf("active session lookup failed: %v", err)
	}
	if info != nil {
		t.Errorf("expected no active session, got %+v", info)
	}
}
