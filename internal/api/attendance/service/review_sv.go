package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/entity"
	contextPkg "PresensiGolang/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// ApproveRecord resolves a flagged record. Approval and rejection are
// terminal: the conditional update refuses records already reviewed.
func (s *attendanceService) ApproveRecord(ctx context.Context, user entity.EmployeeLoginData, id string) error {
	return s.review(ctx, user, id, entity.StatusApproved, "")
}

func (s *attendanceService) RejectRecord(ctx context.Context, user entity.EmployeeLoginData, id string, reason string) error {
	return s.review(ctx, user, id, entity.StatusRejected, reason)
}

func (s *attendanceService) review(ctx context.Context, user entity.EmployeeLoginData, id string, status entity.AttendanceStatus, reason string) error {
	if user.Role != entity.RoleReviewer && user.Role != entity.RoleAdmin {
		return attendance.ErrReviewNotAllowed
	}

	client, err := s.attendanceRepository.NewClient(false)
	if err != nil {
		return err
	}

	record, err := client.Attendance.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if record.CompanyID != user.CompanyID {
		return attendance.ErrRecordAccessDenied
	}

	if record.Status.IsTerminal() {
		return attendance.ErrRecordAlreadyReviewed
	}

	if err := client.Attendance.UpdateReview(ctx, id, status, user.ID, reason); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"record_id":  id,
		"reviewer":   user.ID,
		"status":     string(status),
	}).Info("Attendance record reviewed")

	return nil
}
