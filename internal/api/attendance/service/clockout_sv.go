package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/api/enrollment"
	"PresensiGolang/internal/entity"
	contextPkg "PresensiGolang/pkg/context"
	"PresensiGolang/pkg/facematch"
	"errors"
	"mime/multipart"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// ClockOut closes an open attendance record. Unlike clock-in, a failed face
// match does not block the clock-out: the record is closed with
// clock_out_match=false so the session cannot be held open by a bad capture,
// and reviewers see the mismatch.
func (s *attendanceService) ClockOut(ctx context.Context, req attendance.ClockOutRequest, faceImage *multipart.FileHeader) (attendance.ClockOutResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if faceImage == nil {
		return attendance.ClockOutResponse{}, attendance.ErrMissingFaceImage
	}

	if err := s.utils.ValidateImageFile(faceImage); err != nil {
		return attendance.ClockOutResponse{}, attendance.ErrMissingFaceImage
	}

	client, err := s.attendanceRepository.NewClient(false)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	record, err := client.Attendance.GetByID(ctx, req.RecordID)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	if record.UserID != req.UserID {
		return attendance.ClockOutResponse{}, attendance.ErrRecordAccessDenied
	}

	if record.ClockOutTime != nil {
		return attendance.ClockOutResponse{}, attendance.ErrAlreadyClockedOut
	}

	frame, err := s.utils.ReadFileBytes(faceImage)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	// Image problems are still hard failures: an unusable capture is
	// retryable, an identity mismatch is not.
	probe, err := s.faceEngine.ExtractEmbedding(frame, req.UserID)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	similarity := 0.0
	isMatch := false

	enrollmentClient, err := s.enrollmentRepository.NewClient(false)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	reference, err := enrollmentClient.FaceIdentity.GetByUserID(ctx, req.UserID)
	switch {
	case err == nil:
		outcome, err := s.verifier.Compare(reference.Embedding, probe.Vector)
		if err != nil {
			if errors.Is(err, facematch.ErrDimensionMismatch) {
				return attendance.ClockOutResponse{}, err
			}
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    req.UserID,
				"error":      err.Error(),
			}).Warn("Clock-out verification errored, closing record unmatched")
		} else {
			similarity = outcome.Similarity
			isMatch = outcome.IsMatch
		}
	case errors.Is(err, enrollment.ErrNotEnrolled):
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    req.UserID,
		}).Warn("Clock-out without enrolled reference, closing record unmatched")
	default:
		return attendance.ClockOutResponse{}, err
	}

	if !isMatch {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    req.UserID,
			"record_id":  record.ID,
			"similarity": similarity,
		}).Warn("Clock-out face did not match")
	}

	clockOutTime := time.Now().UTC()
	if clockOutTime.Before(record.ClockInTime) {
		clockOutTime = record.ClockInTime
	}

	record.ClockOutTime = &clockOutTime
	record.ClockOutSimilarity = &similarity
	record.ClockOutMatch = &isMatch

	if err := client.Attendance.UpdateClockOut(ctx, record); err != nil {
		return attendance.ClockOutResponse{}, err
	}

	go s.uploadClockOutPhoto(contextPkg.Detached(ctx), record.ID, frame)

	// Mirrors the conditional in the update query: flagged stays flagged.
	status := record.Status
	if status == entity.StatusActive {
		status = entity.StatusCompleted
	}

	return attendance.ClockOutResponse{
		RecordID:     record.ID,
		Status:       string(status),
		ClockInTime:  record.ClockInTime.Format(time.RFC3339),
		ClockOutTime: clockOutTime.Format(time.RFC3339),
		Similarity:   similarity,
		IsMatch:      isMatch,
	}, nil
}
