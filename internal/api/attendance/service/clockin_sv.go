package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/api/enrollment"
	"PresensiGolang/internal/entity"
	contextPkg "PresensiGolang/pkg/context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// ClockIn verifies the employee's face against the enrolled reference and
// opens a new attendance record. Verification failures are hard failures:
// no record is created. Fraud analysis runs after the record exists and can
// never fail the clock-in itself.
func (s *attendanceService) ClockIn(ctx context.Context, req attendance.ClockInRequest, faceImage *multipart.FileHeader, userAgent string, clientIP string) (attendance.ClockInResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if faceImage == nil {
		return attendance.ClockInResponse{}, attendance.ErrMissingFaceImage
	}

	if err := s.utils.ValidateImageFile(faceImage); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Clock-in image rejected")
		return attendance.ClockInResponse{}, attendance.ErrMissingFaceImage
	}

	frame, err := s.utils.ReadFileBytes(faceImage)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	probe, err := s.faceEngine.ExtractEmbedding(frame, req.UserID)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	enrollmentClient, err := s.enrollmentRepository.NewClient(false)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	reference, err := enrollmentClient.FaceIdentity.GetByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotEnrolled) {
			return attendance.ClockInResponse{}, attendance.ErrFaceNotEnrolled
		}
		return attendance.ClockInResponse{}, err
	}

	outcome, err := s.verifier.Compare(reference.Embedding, probe.Vector)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	if !outcome.IsMatch {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    req.UserID,
			"similarity": outcome.Similarity,
			"threshold":  outcome.Threshold,
		}).Warn("Clock-in face verification failed")
		return attendance.ClockInResponse{}, attendance.ErrFaceVerificationFailed
	}

	client, err := s.attendanceRepository.NewClient(false)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	if _, err := client.Attendance.GetOpenByUser(ctx, req.UserID); err == nil {
		return attendance.ClockInResponse{}, attendance.ErrActiveSessionExists
	} else if !errors.Is(err, attendance.ErrRecordNotFound) {
		return attendance.ClockInResponse{}, err
	}

	now := time.Now().UTC()
	event := makeClockEvent(req, userAgent, clientIP, now)

	record := entity.AttendanceRecord{
		ID:                uuid.New().String(),
		UserID:            req.UserID,
		CompanyID:         req.CompanyID,
		WorkMode:          entity.WorkMode(req.WorkMode),
		ClockInTime:       now,
		ClockInSimilarity: outcome.Similarity,
		Status:            entity.StatusActive,
		DeviceID:          req.DeviceID,
	}

	if err := client.Attendance.Create(ctx, record); err != nil {
		// Two near-simultaneous clock-ins can both pass the open-session
		// read; the storage uniqueness decides the race.
		if errors.Is(err, attendance.ErrActiveSessionExists) {
			return attendance.ClockInResponse{}, attendance.ErrActiveSessionExists
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		}).Error("Failed to create attendance record")
		return attendance.ClockInResponse{}, attendance.ErrCreateRecord
	}

	// The response must not wait on detectors, Redis, or S3.
	go s.runFraudAnalysis(contextPkg.Detached(ctx), record, event, frame)

	return attendance.ClockInResponse{
		RecordID:    record.ID,
		Status:      string(record.Status),
		ClockInTime: record.ClockInTime.Format(time.RFC3339),
		Similarity:  outcome.Similarity,
		Threshold:   outcome.Threshold,
	}, nil
}
