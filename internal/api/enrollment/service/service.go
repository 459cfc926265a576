package enrollmentService

import (
	"PresensiGolang/internal/api/enrollment"
	enrollmentRepository "PresensiGolang/internal/api/enrollment/repository"
	"PresensiGolang/internal/entity"
	"PresensiGolang/pkg/faceengine"
	"PresensiGolang/pkg/s3"
	"PresensiGolang/pkg/utils"
	"mime/multipart"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IEnrollmentService interface {
	EnrollFace(ctx context.Context, user entity.EmployeeLoginData, faceImage *multipart.FileHeader) (enrollment.EnrollFaceResponse, error)
}

type enrollmentService struct {
	log                  *logrus.Logger
	enrollmentRepository enrollmentRepository.Repository
	faceEngine           faceengine.IFaceEngine
	s3                   s3.ItfS3
	utils                utils.IUtils
}

func NewEnrollmentService(
	log *logrus.Logger,
	er enrollmentRepository.Repository,
	faceEngine faceengine.IFaceEngine,
	s3 s3.ItfS3,
	utils utils.IUtils,
) IEnrollmentService {
	return &enrollmentService{
		log:                  log,
		enrollmentRepository: er,
		faceEngine:           faceEngine,
		s3:                   s3,
		utils:                utils,
	}
}
