package attendanceService

import (
	contextPkg "PresensiGolang/pkg/context"
	"PresensiGolang/pkg/fraud"
	"fmt"
	"time"

	"PresensiGolang/internal/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

const fraudAnalysisBudget = 25 * time.Second

// runFraudAnalysis is the post-clock-in pipeline: upload the capture, gather
// the employee's history, fan out the detectors, aggregate, and persist the
// assessment. It runs detached from the request; every failure here is
// logged and swallowed so the clock-in that already succeeded stays
// succeeded.
func (s *attendanceService) runFraudAnalysis(ctx context.Context, record entity.AttendanceRecord, event entity.ClockEvent, frame []byte) {
	requestID := contextPkg.GetRequestID(ctx)

	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"record_id":  record.ID,
				"panic":      fmt.Sprintf("%v", r),
			}).Error("Fraud analysis panicked")
		}
	}()

	c, cancel := context.WithTimeout(ctx, fraudAnalysisBudget)
	defer cancel()

	client, err := s.attendanceRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  record.ID,
			"error":      err.Error(),
		}).Error("Fraud analysis could not open repository client")
		return
	}

	if photoURL, err := s.s3.UploadBytes(frame, "clock_in.jpg"); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  record.ID,
			"error":      err.Error(),
		}).Warn("Clock-in photo upload failed")
	} else if err := client.Attendance.UpdateClockInPhoto(c, record.ID, photoURL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  record.ID,
			"error":      err.Error(),
		}).Warn("Failed to attach clock-in photo")
	}

	// History is read before the current event is pushed into it, so the
	// detectors see the state as of just before this clock-in.
	history := s.gatherHistory(c, event.UserID)
	s.recordHistory(c, event)

	ec := fraud.EventContext{
		Event:           event,
		History:         history,
		CompanyLocation: s.companyLocation,
	}

	findings := make([]entity.AnomalyFinding, len(s.detectors))
	g, gctx := errgroup.WithContext(c)

	for i, detector := range s.detectors {
		i, detector := i, detector
		g.Go(func() error {
			findings[i] = detector.Detect(gctx, ec)
			return nil
		})
	}

	// Detectors never return errors; the group only propagates cancellation.
	_ = g.Wait()

	assessment := s.aggregator.Aggregate(findings, fraud.AggregateInput{
		Event:          event,
		FaceSimilarity: &record.ClockInSimilarity,
	})

	flagged := assessment.RiskScore >= s.fraudConfig.FlagThreshold

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"record_id":  record.ID,
		"user_id":    event.UserID,
		"risk_score": assessment.RiskScore,
		"risk_level": string(assessment.RiskLevel),
		"flags":      assessment.Flags,
		"flagged":    flagged,
	}).Info("Fraud analysis completed")

	if err := client.Attendance.UpdateFraudAssessment(c, record.ID, assessment, flagged); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  record.ID,
			"error":      err.Error(),
		}).Warn("Failed to persist fraud assessment")
	}
}

// gatherHistory pulls whatever signal history exists. Anything missing or
// erroring degrades to empty, which every detector treats as no-anomaly.
func (s *attendanceService) gatherHistory(ctx context.Context, userID string) fraud.History {
	requestID := contextPkg.GetRequestID(ctx)
	var history fraud.History

	devices, err := s.redis.GetKnownDevices(ctx, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Could not load known devices")
	} else {
		history.KnownDevices = devices
	}

	location, err := s.redis.GetLastLocation(ctx, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Could not load last location")
	} else {
		history.LastLocation = location
	}

	recent, err := s.redis.GetRecentClockIns(ctx, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Could not load recent clock-ins")
	} else {
		history.RecentClockIns = recent
		history.AttendanceCount = len(recent)
	}

	return history
}

func (s *attendanceService) recordHistory(ctx context.Context, event entity.ClockEvent) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.redis.AddKnownDevice(ctx, event.UserID, event.DeviceID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    event.UserID,
			"error":      err.Error(),
		}).Warn("Could not record device")
	}

	if event.Location != nil {
		if err := s.redis.SetLastLocation(ctx, event.UserID, *event.Location); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    event.UserID,
				"error":      err.Error(),
			}).Warn("Could not record location")
		}
	}

	if err := s.redis.PushClockIn(ctx, event.UserID, event.Timestamp); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    event.UserID,
			"error":      err.Error(),
		}).Warn("Could not record clock-in time")
	}
}
