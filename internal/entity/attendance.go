package entity

import "time"

type WorkMode string

const (
	WorkModeOnsite WorkMode = "onsite"
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
)

type AttendanceStatus string

const (
	StatusActive    AttendanceStatus = "active"
	StatusCompleted AttendanceStatus = "completed"
	StatusFlagged   AttendanceStatus = "flagged"
	StatusApproved  AttendanceStatus = "approved"
	StatusRejected  AttendanceStatus = "rejected"
)

// IsTerminal reports whether the status can no longer change.
func (s AttendanceStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// ClockEvent is the ephemeral input of one clock-in/clock-out. It is never
// persisted directly; the orchestrator consumes it and mutates the
// AttendanceRecord instead.
type ClockEvent struct {
	UserID    string
	CompanyID string
	WorkMode  WorkMode
	Location  *Location
	DeviceID  string
	UserAgent string
	ClientIP  string
	Timestamp time.Time
}

type AttendanceRecord struct {
	ID                 string
	UserID             string
	CompanyID          string
	WorkMode           WorkMode
	ClockInTime        time.Time
	ClockOutTime       *time.Time
	ClockInSimilarity  float64
	ClockOutSimilarity *float64
	ClockOutMatch      *bool
	RiskScore          *float64
	FraudAssessment    *FraudAssessment
	Status             AttendanceStatus
	DeviceID           string
	ClockInPhotoURL    string
	ClockOutPhotoURL   string
	ReviewedBy         *string
	ReviewedAt         *time.Time
	RejectionReason    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
