package attendance

import "PresensiGolang/internal/entity"

type ClockInRequest struct {
	UserID    string   `json:"user_id" form:"user_id" validate:"required"`
	CompanyID string   `json:"company_id" form:"company_id" validate:"required"`
	WorkMode  string   `json:"work_mode" form:"work_mode" validate:"required,oneof=onsite remote hybrid"`
	Latitude  *float64 `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
	Accuracy  *float64 `json:"accuracy" form:"accuracy" validate:"omitempty,gte=0"`
	DeviceID  string   `json:"device_id" form:"device_id"`
}

type ClockOutRequest struct {
	UserID   string `json:"user_id" form:"user_id" validate:"required"`
	RecordID string `json:"record_id" form:"record_id" validate:"required,uuid4"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type ClockInResponse struct {
	RecordID    string  `json:"record_id"`
	Status      string  `json:"status"`
	ClockInTime string  `json:"clock_in_time"`
	Similarity  float64 `json:"similarity"`
	Threshold   float64 `json:"threshold"`
}

type ClockOutResponse struct {
	RecordID     string  `json:"record_id"`
	Status       string  `json:"status"`
	ClockInTime  string  `json:"clock_in_time"`
	ClockOutTime string  `json:"clock_out_time"`
	Similarity   float64 `json:"similarity"`
	IsMatch      bool    `json:"is_match"`
}

type RecordResponse struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	CompanyID       string                  `json:"company_id"`
	WorkMode        string                  `json:"work_mode"`
	Status          string                  `json:"status"`
	ClockInTime     string                  `json:"clock_in_time"`
	ClockOutTime    string                  `json:"clock_out_time,omitempty"`
	RiskScore       *float64                `json:"risk_score,omitempty"`
	FraudAssessment *entity.FraudAssessment `json:"fraud_assessment,omitempty"`
	ClockInPhoto    string                  `json:"clock_in_photo,omitempty"`
	ClockOutPhoto   string                  `json:"clock_out_photo,omitempty"`
	ReviewedBy      string                  `json:"reviewed_by,omitempty"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
}

type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
}
