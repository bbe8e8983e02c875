package domain

import (
	"context"
	"time"
)

// QRPayload is the JSON embedded in a scanned class QR code.
type QRPayload struct {
	Type    string `json:"type"`
	ClassID int    `json:"id"`
	Token   string `json:"token"`
}

const QRTypeClassSession = "class-session"

type CheckInRequest struct {
	QRData    string   `json:"qr_data" valid:"required~QR data is required"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
}

type RosterStudent struct {
	StudentID  int    `json:"student_id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Gender     string `json:"gender"`
}

type CheckInResponse struct {
	SessionID        int             `json:"session_id"`
	ClassID          int             `json:"class_id"`
	ClassName        string          `json:"class_name"`
	SubjectID        int             `json:"subject_id"`
	Status           SessionStatus   `json:"status"`
	CheckInTime      time.Time       `json:"check_in_time"`
	LateMinutes      int             `json:"late_minutes"`
	AlreadyCheckedIn bool            `json:"already_checked_in"`
	Substitute       bool            `json:"substitute"`
	Roster           []RosterStudent `json:"roster"`
}

type CheckOutRequest struct {
	EarlyCheckoutReason string `json:"early_checkout_reason,omitempty"`
}

// EarlyCheckoutReasons are the permitted codes for a 50-79% checkout.
var EarlyCheckoutReasons = []string{
	"class_cancelled",
	"students_absent",
	"emergency",
	"schedule_conflict",
	"material_completed",
	"other",
}

type CheckOutResponse struct {
	SessionID       int       `json:"session_id"`
	CheckOutTime    time.Time `json:"check_out_time"`
	ElapsedPercent  int       `json:"elapsed_percent"`
	ElapsedMinutes  int       `json:"elapsed_minutes"`
	TotalMinutes    int       `json:"total_minutes"`
	IsEarlyCheckout bool      `json:"is_early_checkout"`
	IsStaleClosure  bool      `json:"is_stale_closure"`
}

type LeaveRequest struct {
	Date   string           `json:"date" valid:"required~Date is required"`
	Status AttendanceStatus `json:"status" valid:"required~Status is required"`
	Notes  string           `json:"notes,omitempty"`
}

type LeaveResponse struct {
	Date             time.Time        `json:"date"`
	Status           AttendanceStatus `json:"status"`
	ImpactedSessions int              `json:"impacted_sessions"`
}

type StudentMark struct {
	StudentID int              `json:"student_id" valid:"required~Student is required"`
	Status    AttendanceStatus `json:"status" valid:"required~Status is required"`
}

type StudentMarkRequest struct {
	Marks []StudentMark `json:"marks" valid:"required~Marks are required"`
}

type StudentMarkResponse struct {
	SessionID int `json:"session_id"`
	Marked    int `json:"marked"`
}

// ReconcileResult reports one sweep run. Skipped is set when the date
// was a weekend or a school-wide holiday and nothing was produced.
type ReconcileResult struct {
	Date           time.Time `json:"date"`
	RegularCreated int       `json:"regular_created"`
	SessionCreated int       `json:"session_created"`
	Skipped        string    `json:"skipped,omitempty"`
}

type AttendanceUseCase interface {
	CheckIn(ctx context.Context, teacherID int, req *CheckInRequest) (*CheckInResponse, error)
	CheckOut(ctx context.Context, teacherID, sessionID int, req *CheckOutRequest) (*CheckOutResponse, error)
	ActiveSession(ctx context.Context, teacherID int) (*ActiveSessionInfo, error)
	SubmitLeave(ctx context.Context, teacherID int, req *LeaveRequest) (*LeaveResponse, error)
	MarkStudents(ctx context.Context, teacherID, sessionID int, req *StudentMarkRequest) (*StudentMarkResponse, error)
}

type ReconcileUseCase interface {
	Run(ctx context.Context, date time.Time) (*ReconcileResult, error)
}
