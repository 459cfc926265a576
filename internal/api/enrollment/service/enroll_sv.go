package enrollmentService

import (
	"PresensiGolang/internal/api/enrollment"
	"PresensiGolang/internal/entity"
	contextPkg "PresensiGolang/pkg/context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// EnrollFace extracts and stores the employee's reference embedding. The
// reference is immutable: re-enrollment needs an admin to delete the old
// identity first, so a bad actor cannot swap the face a record is verified
// against.
func (s *enrollmentService) EnrollFace(ctx context.Context, user entity.EmployeeLoginData, faceImage *multipart.FileHeader) (enrollment.EnrollFaceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if faceImage == nil {
		return enrollment.EnrollFaceResponse{}, enrollment.ErrMissingImage
	}

	if err := s.utils.ValidateImageFile(faceImage); err != nil {
		return enrollment.EnrollFaceResponse{}, enrollment.ErrMissingImage
	}

	client, err := s.enrollmentRepository.NewClient(false)
	if err != nil {
		return enrollment.EnrollFaceResponse{}, err
	}

	if _, err := client.FaceIdentity.GetByUserID(ctx, user.ID); err == nil {
		return enrollment.EnrollFaceResponse{}, enrollment.ErrAlreadyEnrolled
	} else if !errors.Is(err, enrollment.ErrNotEnrolled) {
		return enrollment.EnrollFaceResponse{}, err
	}

	frame, err := s.utils.ReadFileBytes(faceImage)
	if err != nil {
		return enrollment.EnrollFaceResponse{}, err
	}

	embedding, err := s.faceEngine.ExtractEmbedding(frame, user.ID)
	if err != nil {
		return enrollment.EnrollFaceResponse{}, err
	}

	photoURL, err := s.s3.UploadBytes(frame, "enrollment.jpg")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
			"error":      err.Error(),
		}).Warn("Enrollment photo upload failed")
		photoURL = ""
	}

	identity := entity.FaceIdentity{
		UserID:     user.ID,
		CompanyID:  user.CompanyID,
		Embedding:  embedding.Vector,
		Quality:    embedding.Quality,
		PhotoURL:   photoURL,
		EnrolledAt: time.Now().UTC(),
	}

	if err := client.FaceIdentity.Create(ctx, identity); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
			"error":      err.Error(),
		}).Error("Failed to store face identity")
		return enrollment.EnrollFaceResponse{}, enrollment.ErrCreateIdentity
	}

	return enrollment.EnrollFaceResponse{
		UserID:     identity.UserID,
		Quality:    identity.Quality,
		EnrolledAt: identity.EnrolledAt.Format(time.RFC3339),
	}, nil
}
