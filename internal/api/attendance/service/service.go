package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	attendanceRepository "PresensiGolang/internal/api/attendance/repository"
	enrollmentRepository "PresensiGolang/internal/api/enrollment/repository"
	"PresensiGolang/internal/entity"
	"PresensiGolang/pkg/faceengine"
	"PresensiGolang/pkg/facematch"
	"PresensiGolang/pkg/fraud"
	"PresensiGolang/pkg/redis"
	"PresensiGolang/pkg/s3"
	"PresensiGolang/pkg/utils"
	"mime/multipart"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IAttendanceService interface {
	ClockIn(ctx context.Context, req attendance.ClockInRequest, faceImage *multipart.FileHeader, userAgent string, clientIP string) (attendance.ClockInResponse, error)
	ClockOut(ctx context.Context, req attendance.ClockOutRequest, faceImage *multipart.FileHeader) (attendance.ClockOutResponse, error)
	GetRecordByID(ctx context.Context, user entity.EmployeeLoginData, id string) (attendance.RecordResponse, error)
	GetRecordsByUser(ctx context.Context, user entity.EmployeeLoginData, limit int) (attendance.RecordListResponse, error)
	GetFlaggedRecords(ctx context.Context, user entity.EmployeeLoginData) (attendance.RecordListResponse, error)
	ApproveRecord(ctx context.Context, user entity.EmployeeLoginData, id string) error
	RejectRecord(ctx context.Context, user entity.EmployeeLoginData, id string, reason string) error
}

type attendanceService struct {
	log                  *logrus.Logger
	attendanceRepository attendanceRepository.Repository
	enrollmentRepository enrollmentRepository.Repository
	faceEngine           faceengine.IFaceEngine
	verifier             facematch.IVerifier
	detectors            []fraud.Detector
	aggregator           fraud.IAggregator
	fraudConfig          fraud.Config
	redis                redis.IRedis
	s3                   s3.ItfS3
	utils                utils.IUtils
	companyLocation      *entity.Location
}

func NewAttendanceService(
	log *logrus.Logger,
	ar attendanceRepository.Repository,
	er enrollmentRepository.Repository,
	faceEngine faceengine.IFaceEngine,
	verifier facematch.IVerifier,
	detectors []fraud.Detector,
	aggregator fraud.IAggregator,
	fraudConfig fraud.Config,
	redis redis.IRedis,
	s3 s3.ItfS3,
	utils utils.IUtils,
	companyLocation *entity.Location,
) IAttendanceService {
	return &attendanceService{
		log:                  log,
		attendanceRepository: ar,
		enrollmentRepository: er,
		faceEngine:           faceEngine,
		verifier:             verifier,
		detectors:            detectors,
		aggregator:           aggregator,
		fraudConfig:          fraudConfig,
		redis:                redis,
		s3:                   s3,
		utils:                utils,
		companyLocation:      companyLocation,
	}
}
