package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/entity"
	contextPkg "PresensiGolang/pkg/context"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func makeClockEvent(req attendance.ClockInRequest, userAgent string, clientIP string, ts time.Time) entity.ClockEvent {
	event := entity.ClockEvent{
		UserID:    req.UserID,
		CompanyID: req.CompanyID,
		WorkMode:  entity.WorkMode(req.WorkMode),
		DeviceID:  req.DeviceID,
		UserAgent: userAgent,
		ClientIP:  clientIP,
		Timestamp: ts,
	}

	if req.Latitude != nil && req.Longitude != nil {
		location := entity.Location{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		}
		if req.Accuracy != nil {
			location.Accuracy = *req.Accuracy
		}
		event.Location = &location
	}

	return event
}

func (s *attendanceService) uploadClockOutPhoto(ctx context.Context, recordID string, frame []byte) {
	requestID := contextPkg.GetRequestID(ctx)

	photoURL, err := s.s3.UploadBytes(frame, "clock_out.jpg")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  recordID,
			"error":      err.Error(),
		}).Warn("Clock-out photo upload failed")
		return
	}

	client, err := s.attendanceRepository.NewClient(false)
	if err != nil {
		return
	}

	if err := client.Attendance.UpdateClockOutPhoto(ctx, recordID, photoURL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  recordID,
			"error":      err.Error(),
		}).Warn("Failed to attach clock-out photo")
	}
}

// CompanyLocationFromEnv reads the office geofence center. Returns nil when
// unset, which disables the geofence check for onsite clock-ins.
func CompanyLocationFromEnv() *entity.Location {
	latStr := os.Getenv("COMPANY_GEOFENCE_LAT")
	lonStr := os.Getenv("COMPANY_GEOFENCE_LON")
	if latStr == "" || lonStr == "" {
		return nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil
	}

	return &entity.Location{Latitude: lat, Longitude: lon}
}
