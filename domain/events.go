package domain

import "time"

type EventType string

const (
	EventSessionStatusChanged EventType = "session.status_changed"
	EventTeacherCheckedIn     EventType = "teacher.checked_in"
	EventTeacherCheckedOut    EventType = "teacher.checked_out"
	EventSessionEndingSoon    EventType = "session.ending_soon"
)

// Event is pushed to dashboards after a successful commit. Consumers
// are best-effort observers; correctness never depends on delivery.
type Event struct {
	Type      EventType              `json:"type"`
	SessionID int                    `json:"session_id,omitempty"`
	TeacherID int                    `json:"teacher_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventPublisher must never block or return failure into the caller;
// implementations log and swallow their own errors.
type EventPublisher interface {
	Publish(event Event)
}

// Clock supplies the institution's civil time regardless of host
// timezone. DayOfWeek is ISO numbered, 1=Monday through 7=Sunday.
type Clock interface {
	Now() time.Time
	Today() time.Time
	DayOfWeek(t time.Time) int
}
