package enrollmentHandler

import (
	enrollmentService "PresensiGolang/internal/api/enrollment/service"
	"PresensiGolang/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type EnrollmentHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	enrollmentService enrollmentService.IEnrollmentService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	enrollmentService enrollmentService.IEnrollmentService,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:               log,
		validator:         validate,
		middleware:        middleware,
		enrollmentService: enrollmentService,
	}
}

func (h *EnrollmentHandler) Start(srv fiber.Router) {
	enrollment := srv.Group("/enrollment")

	enrollment.Post("/face", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.EnrollFace)
}
