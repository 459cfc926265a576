package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/entity"
	"PresensiGolang/pkg/faceengine"
	"PresensiGolang/pkg/facematch"
	"PresensiGolang/pkg/fraud"
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ClockInSuite struct {
	suite.Suite
	service IAttendanceService
	store   *fakeAttendanceStore
	faces   *fakeFaceIdentityStore
	engine  *fakeFaceEngine
	redis   *fakeRedis
	s3      *fakeS3
}

func TestClockInSuite(t *testing.T) {
	suite.Run(t, new(ClockInSuite))
}

var (
	referenceVector = []float64{1, 0, 0, 0}
	matchingVector  = []float64{1, 0, 0, 0}
	strangerVector  = []float64{0, 1, 0, 0}
)

func (s *ClockInSuite) SetupTest() {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	s.store = newFakeAttendanceStore()
	s.faces = newFakeFaceIdentityStore()
	s.engine = &fakeFaceEngine{
		embedding: entity.FaceEmbedding{Vector: matchingVector, Quality: 0.9, Confidence: 0.95},
	}
	s.redis = newFakeRedis()
	s.s3 = &fakeS3{}

	s.faces.identities["user-1"] = entity.FaceIdentity{
		UserID:    "user-1",
		CompanyID: "company-1",
		Embedding: referenceVector,
	}

	cfg := fraud.DefaultConfig()
	s.service = NewAttendanceService(
		logger,
		&fakeAttendanceRepo{store: s.store},
		&fakeEnrollmentRepo{store: s.faces},
		s.engine,
		facematch.New(facematch.Config{EmbeddingSize: 4, MatchThreshold: 0.6}),
		fraud.DefaultDetectors(cfg),
		fraud.NewAggregator(cfg),
		cfg,
		s.redis,
		s.s3,
		&fakeUtils{frame: []byte("jpeg-bytes")},
		nil,
	)
}

func clockInRequest() attendance.ClockInRequest {
	return attendance.ClockInRequest{
		UserID:    "user-1",
		CompanyID: "company-1",
		WorkMode:  "onsite",
		DeviceID:  "device-a",
	}
}

func faceImage() *multipart.FileHeader {
	return &multipart.FileHeader{Filename: "face.jpg"}
}

func (s *ClockInSuite) waitForAssessment() string {
	select {
	case id := <-s.store.assessed:
		return id
	case <-time.After(5 * time.Second):
		s.FailNow("fraud assessment never persisted")
		return ""
	}
}

func (s *ClockInSuite) TestClockIn() {
	s.Run("matching face opens an active record", func() {
		s.SetupTest()
		resp, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.Require().NoError(err)
		s.NotEmpty(resp.RecordID)
		s.Equal(string(entity.StatusActive), resp.Status)
		s.InDelta(1.0, resp.Similarity, 1e-9)
		s.Equal(0.6, resp.Threshold)

		record, ok := s.store.get(resp.RecordID)
		s.Require().True(ok)
		s.Equal("user-1", record.UserID)
		s.Equal(entity.StatusActive, record.Status)
		s.Nil(record.ClockOutTime)

		s.waitForAssessment()
	})

	s.Run("missing image is rejected before any verification", func() {
		s.SetupTest()
		_, err := s.service.ClockIn(context.Background(), clockInRequest(), nil, "agent", "10.0.0.1")

		s.ErrorIs(err, attendance.ErrMissingFaceImage)
		s.Empty(s.store.records)
	})

	s.Run("no face detected creates no record", func() {
		s.SetupTest()
		s.engine.err = faceengine.ErrNoFaceDetected

		_, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.ErrorIs(err, faceengine.ErrNoFaceDetected)
		s.Empty(s.store.records)
		s.engine.err = nil
	})

	s.Run("unenrolled user cannot clock in", func() {
		s.SetupTest()
		req := clockInRequest()
		req.UserID = "user-9"

		_, err := s.service.ClockIn(context.Background(), req, faceImage(), "agent", "10.0.0.1")

		s.ErrorIs(err, attendance.ErrFaceNotEnrolled)
		s.Empty(s.store.records)
	})

	s.Run("mismatched face creates no record", func() {
		s.SetupTest()
		s.engine.embedding = entity.FaceEmbedding{Vector: strangerVector, Quality: 0.9}

		_, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.ErrorIs(err, attendance.ErrFaceVerificationFailed)
		s.Empty(s.store.records)
		s.engine.embedding = entity.FaceEmbedding{Vector: matchingVector, Quality: 0.9}
	})

	s.Run("open session blocks a second clock-in", func() {
		s.SetupTest()
		first, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")
		s.Require().NoError(err)
		s.waitForAssessment()

		_, err = s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.ErrorIs(err, attendance.ErrActiveSessionExists)

		record, _ := s.store.get(first.RecordID)
		s.Nil(record.ClockOutTime)
	})

	s.Run("open session missed by the guard read is still rejected", func() {
		s.SetupTest()
		first, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")
		s.Require().NoError(err)
		s.waitForAssessment()

		// A concurrent clock-in can pass the open-session read before the
		// first record lands; the storage uniqueness decides the race.
		s.store.hideOpen = true

		_, err = s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.ErrorIs(err, attendance.ErrActiveSessionExists)
		s.Len(s.store.records, 1)

		record, _ := s.store.get(first.RecordID)
		s.Nil(record.ClockOutTime)
	})
}

func (s *ClockInSuite) TestFraudAnalysisIsolation() {
	s.Run("storage and cache outages never fail the clock-in", func() {
		s.SetupTest()
		s.redis.fail = true
		s.s3.fail = true

		resp, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.Require().NoError(err)
		s.Equal(string(entity.StatusActive), resp.Status)

		// History degrades to empty, so the assessment still lands.
		s.Equal(resp.RecordID, s.waitForAssessment())

		record, _ := s.store.get(resp.RecordID)
		s.NotNil(record.FraudAssessment)
		s.Empty(record.ClockInPhotoURL)
	})

	s.Run("assessment write failure leaves the record active", func() {
		s.SetupTest()
		s.store.failAssessment = true

		resp, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.Require().NoError(err)
		s.waitForAssessment()

		record, _ := s.store.get(resp.RecordID)
		s.Equal(entity.StatusActive, record.Status)
		s.Nil(record.FraudAssessment)
	})

	s.Run("clean clock-in stays below the flag threshold", func() {
		s.SetupTest()
		resp, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.Require().NoError(err)
		s.waitForAssessment()

		record, _ := s.store.get(resp.RecordID)
		s.Require().NotNil(record.RiskScore)
		// First clock-in with a matching face: no device, burst, or pattern
		// history; only the time detector can fire depending on wall clock.
		s.Less(*record.RiskScore, 60.0)
		s.NotEqual(entity.StatusFlagged, record.Status)
	})

	s.Run("successful upload attaches the clock-in photo", func() {
		s.SetupTest()
		resp, err := s.service.ClockIn(context.Background(), clockInRequest(), faceImage(), "agent", "10.0.0.1")

		s.Require().NoError(err)
		s.waitForAssessment()

		record, _ := s.store.get(resp.RecordID)
		s.Contains(record.ClockInPhotoURL, "clock_in.jpg")
	})
}
