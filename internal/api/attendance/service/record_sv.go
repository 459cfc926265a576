package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/entity"
	contextPkg "PresensiGolang/pkg/context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *attendanceService) GetRecordByID(ctx context.Context, user entity.EmployeeLoginData, id string) (attendance.RecordResponse, error) {
	client, err := s.attendanceRepository.NewClient(false)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	record, err := client.Attendance.GetByID(ctx, id)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if !canViewRecord(user, record) {
		return attendance.RecordResponse{}, attendance.ErrRecordAccessDenied
	}

	return s.makeRecordResponse(ctx, record, user), nil
}

func (s *attendanceService) GetRecordsByUser(ctx context.Context, user entity.EmployeeLoginData, limit int) (attendance.RecordListResponse, error) {
	client, err := s.attendanceRepository.NewClient(false)
	if err != nil {
		return attendance.RecordListResponse{}, err
	}

	records, err := client.Attendance.ListByUser(ctx, user.ID, limit)
	if err != nil {
		return attendance.RecordListResponse{}, err
	}

	return s.makeRecordListResponse(ctx, records, user), nil
}

func (s *attendanceService) GetFlaggedRecords(ctx context.Context, user entity.EmployeeLoginData) (attendance.RecordListResponse, error) {
	if user.Role != entity.RoleReviewer && user.Role != entity.RoleAdmin {
		return attendance.RecordListResponse{}, attendance.ErrReviewNotAllowed
	}

	client, err := s.attendanceRepository.NewClient(false)
	if err != nil {
		return attendance.RecordListResponse{}, err
	}

	records, err := client.Attendance.ListFlaggedByCompany(ctx, user.CompanyID)
	if err != nil {
		return attendance.RecordListResponse{}, err
	}

	return s.makeRecordListResponse(ctx, records, user), nil
}

// canViewRecord: employees see their own records, reviewers and admins see
// every record in their company.
func canViewRecord(user entity.EmployeeLoginData, record entity.AttendanceRecord) bool {
	if record.UserID == user.ID {
		return true
	}
	if user.Role == entity.RoleReviewer || user.Role == entity.RoleAdmin {
		return record.CompanyID == user.CompanyID
	}
	return false
}

func (s *attendanceService) makeRecordListResponse(ctx context.Context, records []entity.AttendanceRecord, user entity.EmployeeLoginData) attendance.RecordListResponse {
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, s.makeRecordResponse(ctx, record, user))
	}

	return attendance.RecordListResponse{
		Records: responses,
		Total:   len(responses),
	}
}

func (s *attendanceService) makeRecordResponse(ctx context.Context, record entity.AttendanceRecord, user entity.EmployeeLoginData) attendance.RecordResponse {
	resp := attendance.RecordResponse{
		ID:          record.ID,
		UserID:      record.UserID,
		CompanyID:   record.CompanyID,
		WorkMode:    string(record.WorkMode),
		Status:      string(record.Status),
		ClockInTime: record.ClockInTime.Format(time.RFC3339),
		RiskScore:   record.RiskScore,
	}

	if record.ClockOutTime != nil {
		resp.ClockOutTime = record.ClockOutTime.Format(time.RFC3339)
	}
	if record.ReviewedBy != nil {
		resp.ReviewedBy = *record.ReviewedBy
	}
	if record.RejectionReason != nil {
		resp.RejectionReason = *record.RejectionReason
	}

	// The full assessment is reviewer-facing detail.
	if user.Role == entity.RoleReviewer || user.Role == entity.RoleAdmin {
		resp.FraudAssessment = record.FraudAssessment
	}

	resp.ClockInPhoto = s.presignPhoto(ctx, record.ClockInPhotoURL)
	resp.ClockOutPhoto = s.presignPhoto(ctx, record.ClockOutPhotoURL)

	return resp
}

// presignPhoto is best-effort: a missing or unreachable object yields an
// empty link, never an error on the read path.
func (s *attendanceService) presignPhoto(ctx context.Context, photoURL string) string {
	if photoURL == "" {
		return ""
	}

	presigned, err := s.s3.PresignUrl(photoURL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to presign photo URL")
		return ""
	}

	return presigned
}
