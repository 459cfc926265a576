package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/entity"
	"PresensiGolang/pkg/faceengine"
	"PresensiGolang/pkg/facematch"
	"PresensiGolang/pkg/fraud"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ClockOutSuite struct {
	suite.Suite
	service IAttendanceService
	store   *fakeAttendanceStore
	faces   *fakeFaceIdentityStore
	engine  *fakeFaceEngine
}

func TestClockOutSuite(t *testing.T) {
	suite.Run(t, new(ClockOutSuite))
}

func (s *ClockOutSuite) SetupTest() {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	s.store = newFakeAttendanceStore()
	s.faces = newFakeFaceIdentityStore()
	s.engine = &fakeFaceEngine{
		embedding: entity.FaceEmbedding{Vector: matchingVector, Quality: 0.9},
	}

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
		newFakeRedis(),
		&fakeS3{},
		&fakeUtils{frame: []byte("jpeg-bytes")},
		nil,
	)
}

func (s *ClockOutSuite) seedActiveRecord(id string, userID string) {
	s.store.put(entity.AttendanceRecord{
		ID:                id,
		UserID:            userID,
		CompanyID:         "company-1",
		WorkMode:          entity.WorkModeOnsite,
		ClockInTime:       time.Now().UTC().Add(-8 * time.Hour),
		ClockInSimilarity: 0.92,
		Status:            entity.StatusActive,
	})
}

func (s *ClockOutSuite) TestClockOut() {
	request := attendance.ClockOutRequest{UserID: "user-1", RecordID: "rec-1"}

	s.Run("matching face completes the record", func() {
		s.SetupTest()
		s.seedActiveRecord("rec-1", "user-1")

		resp, err := s.service.ClockOut(context.Background(), request, faceImage())

		s.Require().NoError(err)
		s.Equal(string(entity.StatusCompleted), resp.Status)
		s.True(resp.IsMatch)
		s.InDelta(1.0, resp.Similarity, 1e-9)

		record, _ := s.store.get("rec-1")
		s.Equal(entity.StatusCompleted, record.Status)
		s.Require().NotNil(record.ClockOutTime)
		s.Require().NotNil(record.ClockOutMatch)
		s.True(*record.ClockOutMatch)
		s.False(record.ClockOutTime.Before(record.ClockInTime))
	})

	s.Run("mismatched face still closes the record", func() {
		s.SetupTest()
		s.seedActiveRecord("rec-1", "user-1")
		s.engine.embedding = entity.FaceEmbedding{Vector: strangerVector, Quality: 0.9}

		resp, err := s.service.ClockOut(context.Background(), request, faceImage())

		s.Require().NoError(err)
		s.False(resp.IsMatch)

		record, _ := s.store.get("rec-1")
		s.Require().NotNil(record.ClockOutMatch)
		s.False(*record.ClockOutMatch)
		s.NotNil(record.ClockOutTime)
	})

	s.Run("missing reference closes the record unmatched", func() {
		s.SetupTest()
		s.seedActiveRecord("rec-1", "user-1")
		delete(s.faces.identities, "user-1")

		resp, err := s.service.ClockOut(context.Background(), request, faceImage())

		s.Require().NoError(err)
		s.False(resp.IsMatch)
		s.Equal(0.0, resp.Similarity)

		record, _ := s.store.get("rec-1")
		s.NotNil(record.ClockOutTime)
	})

	s.Run("unusable capture aborts without closing", func() {
		s.SetupTest()
		s.seedActiveRecord("rec-1", "user-1")
		s.engine.err = faceengine.ErrLowQualityImage

		_, err := s.service.ClockOut(context.Background(), request, faceImage())

		s.ErrorIs(err, faceengine.ErrLowQualityImage)

		record, _ := s.store.get("rec-1")
		s.Nil(record.ClockOutTime)
	})

	s.Run("foreign record is denied", func() {
		s.SetupTest()
		s.seedActiveRecord("rec-1", "user-2")

		_, err := s.service.ClockOut(context.Background(), request, faceImage())

		s.ErrorIs(err, attendance.ErrRecordAccessDenied)

		record, _ := s.store.get("rec-1")
		s.Nil(record.ClockOutTime)
	})

	s.Run("second clock-out is rejected", func() {
		s.SetupTest()
		s.seedActiveRecord("rec-1", "user-1")

		_, err := s.service.ClockOut(context.Background(), request, faceImage())
		s.Require().NoError(err)

		record, _ := s.store.get("rec-1")
		firstClockOut := *record.ClockOutTime

		_, err = s.service.ClockOut(context.Background(), request, faceImage())

		s.ErrorIs(err, attendance.ErrAlreadyClockedOut)

		record, _ = s.store.get("rec-1")
		s.Equal(firstClockOut, *record.ClockOutTime)
	})

	s.Run("unknown record returns not found", func() {
		s.SetupTest()

		_, err := s.service.ClockOut(context.Background(), request, faceImage())

		s.ErrorIs(err, attendance.ErrRecordNotFound)
	})

	s.Run("flagged record keeps its status after clock-out", func() {
		s.SetupTest()
		s.store.put(entity.AttendanceRecord{
			ID:          "rec-1",
			UserID:      "user-1",
			CompanyID:   "company-1",
			ClockInTime: time.Now().UTC().Add(-4 * time.Hour),
			Status:      entity.StatusFlagged,
		})

		resp, err := s.service.ClockOut(context.Background(), request, faceImage())

		s.Require().NoError(err)
		s.Equal(string(entity.StatusFlagged), resp.Status)

		record, _ := s.store.get("rec-1")
		s.Equal(entity.StatusFlagged, record.Status)
		s.NotNil(record.ClockOutTime)
	})
}
