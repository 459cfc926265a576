package enrollmentService

import (
	"PresensiGolang/internal/api/enrollment"
	enrollmentRepository "PresensiGolang/internal/api/enrollment/repository"
	"PresensiGolang/internal/entity"
	"PresensiGolang/pkg/faceengine"
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type fakeIdentityStore struct {
	mu         sync.Mutex
	identities map[string]entity.FaceIdentity
}

func (f *fakeIdentityStore) Create(_ context.Context, identity entity.FaceIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities[identity.UserID] = identity
	return nil
}

func (f *fakeIdentityStore) GetByUserID(_ context.Context, userID string) (entity.FaceIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.identities[userID]
	if !ok {
		return entity.FaceIdentity{}, enrollment.ErrNotEnrolled
	}
	return identity, nil
}

type fakeRepo struct {
	store *fakeIdentityStore
}

func (f *fakeRepo) NewClient(bool) (enrollmentRepository.Client, error) {
	return enrollmentRepository.Client{
		FaceIdentity: f.store,
		Commit:       func() error { return nil },
		Rollback:     func() error { return nil },
	}, nil
}

type fakeEngine struct {
	embedding entity.FaceEmbedding
	err       error
}

func (f *fakeEngine) ExtractEmbedding([]byte, string) (entity.FaceEmbedding, error) {
	if f.err != nil {
		return entity.FaceEmbedding{}, f.err
	}
	return f.embedding, nil
}

func (f *fakeEngine) CompareRemote([]float64, []float64, string) (entity.VerificationOutcome, error) {
	return entity.VerificationOutcome{}, nil
}

func (f *fakeEngine) IsConnected(faceengine.ServiceType) bool { return true }
func (f *fakeEngine) Reconnect(faceengine.ServiceType) error  { return nil }
func (f *fakeEngine) CloseConnections()                       {}

type fakeS3 struct {
	fail bool
}

func (f *fakeS3) UploadFile(*multipart.FileHeader) (string, error) {
	return f.UploadBytes(nil, "file")
}

func (f *fakeS3) UploadBytes([]byte, string) (string, error) {
	if f.fail {
		return "", errors.New("s3 unavailable")
	}
	return "https://bucket.s3.amazonaws.com/attendance/photo.jpg", nil
}

func (f *fakeS3) PresignUrl(fileName string) (string, error) { return fileName, nil }
func (f *fakeS3) DeleteFile(string) error                    { return nil }

type fakeUtils struct{}

func (f *fakeUtils) NewULIDFromTimestamp(time.Time) (string, error) { return "01HTESTULID", nil }

func (f *fakeUtils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}
	return nil
}

func (f *fakeUtils) ReadFileBytes(*multipart.FileHeader) ([]byte, error) {
	return []byte("jpeg-bytes"), nil
}

type EnrollSuite struct {
	suite.Suite
	service IEnrollmentService
	store   *fakeIdentityStore
	engine  *fakeEngine
	s3      *fakeS3
}

func TestEnrollSuite(t *testing.T) {
	suite.Run(t, new(EnrollSuite))
}

var testUser = entity.EmployeeLoginData{ID: "user-1", CompanyID: "company-1", Role: entity.RoleEmployee}

func (s *EnrollSuite) SetupTest() {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	s.store = &fakeIdentityStore{identities: make(map[string]entity.FaceIdentity)}
	s.engine = &fakeEngine{
		embedding: entity.FaceEmbedding{Vector: []float64{1, 0, 0, 0}, Quality: 0.88},
	}
	s.s3 = &fakeS3{}

	s.service = NewEnrollmentService(logger, &fakeRepo{store: s.store}, s.engine, s.s3, &fakeUtils{})
}

func faceImage() *multipart.FileHeader {
	return &multipart.FileHeader{Filename: "face.jpg"}
}

func (s *EnrollSuite) TestEnrollFace() {
	s.Run("first enrollment stores the reference", func() {
		s.SetupTest()

		resp, err := s.service.EnrollFace(context.Background(), testUser, faceImage())

		s.Require().NoError(err)
		s.Equal("user-1", resp.UserID)
		s.Equal(0.88, resp.Quality)

		identity := s.store.identities["user-1"]
		s.Equal([]float64{1, 0, 0, 0}, identity.Embedding)
		s.Equal("company-1", identity.CompanyID)
		s.NotEmpty(identity.PhotoURL)
	})

	s.Run("second enrollment is rejected", func() {
		s.SetupTest()

		_, err := s.service.EnrollFace(context.Background(), testUser, faceImage())
		s.Require().NoError(err)

		_, err = s.service.EnrollFace(context.Background(), testUser, faceImage())

		s.ErrorIs(err, enrollment.ErrAlreadyEnrolled)
	})

	s.Run("missing image is rejected", func() {
		s.SetupTest()

		_, err := s.service.EnrollFace(context.Background(), testUser, nil)

		s.ErrorIs(err, enrollment.ErrMissingImage)
		s.Empty(s.store.identities)
	})

	s.Run("no face detected stores nothing", func() {
		s.SetupTest()
		s.engine.err = faceengine.ErrNoFaceDetected

		_, err := s.service.EnrollFace(context.Background(), testUser, faceImage())

		s.ErrorIs(err, faceengine.ErrNoFaceDetected)
		s.Empty(s.store.identities)
	})

	s.Run("photo upload failure does not block enrollment", func() {
		s.SetupTest()
		s.s3.fail = true

		resp, err := s.service.EnrollFace(context.Background(), testUser, faceImage())

		s.Require().NoError(err)
		s.Equal("user-1", resp.UserID)
		s.Empty(s.store.identities["user-1"].PhotoURL)
	})
}
