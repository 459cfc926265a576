package config

import (
	"PresensiGolang/database/postgres"
	attendanceHandler "PresensiGolang/internal/api/attendance/handler"
	attendanceRepository "PresensiGolang/internal/api/attendance/repository"
	attendanceService "PresensiGolang/internal/api/attendance/service"
	enrollmentHandler "PresensiGolang/internal/api/enrollment/handler"
	enrollmentRepository "PresensiGolang/internal/api/enrollment/repository"
	enrollmentService "PresensiGolang/internal/api/enrollment/service"
	"PresensiGolang/internal/middleware"
	"PresensiGolang/pkg/faceengine"
	"PresensiGolang/pkg/facematch"
	"PresensiGolang/pkg/fraud"
	"PresensiGolang/pkg/redis"
	"PresensiGolang/pkg/s3"
	"PresensiGolang/pkg/utils"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	faceEngine  faceengine.IFaceEngine
	s3Client    s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithFaceEngine(faceEngine faceengine.IFaceEngine) ServerOption {
	return func(s *Server) error {
		s.faceEngine = faceEngine
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Enrollment Domain
	enrollmentRepo := enrollmentRepository.New(s.db, s.log)
	enrollmentServices := enrollmentService.NewEnrollmentService(s.log, enrollmentRepo, s.faceEngine, s.s3Client, s.utils)
	enrollmentHandlers := enrollmentHandler.New(s.log, s.validator, s.middleware, enrollmentServices)

	// Attendance Domain
	fraudConfig := fraud.NewConfigFromEnv()
	verifier := facematch.New(facematch.NewConfigFromEnv())
	detectors := fraud.DefaultDetectors(fraudConfig)
	aggregator := fraud.NewAggregator(fraudConfig)

	attendanceRepo := attendanceRepository.New(s.db, s.log)
	attendanceServices := attendanceService.NewAttendanceService(
		s.log,
		attendanceRepo,
		enrollmentRepo,
		s.faceEngine,
		verifier,
		detectors,
		aggregator,
		fraudConfig,
		s.redisServer,
		s.s3Client,
		s.utils,
		attendanceService.CompanyLocationFromEnv(),
	)
	attendanceHandlers := attendanceHandler.New(s.log, s.validator, s.middleware, attendanceServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, enrollmentHandlers, attendanceHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.faceEngine != nil {
			s.faceEngine.CloseConnections()
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
