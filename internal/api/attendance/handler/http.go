package attendanceHandler

import (
	attendanceService "PresensiGolang/internal/api/attendance/service"
	"PresensiGolang/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AttendanceHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	attendanceService attendanceService.IAttendanceService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	attendanceService attendanceService.IAttendanceService,
) *AttendanceHandler {
	return &AttendanceHandler{
		log:               log,
		validator:         validate,
		middleware:        middleware,
		attendanceService: attendanceService,
	}
}

func (h *AttendanceHandler) Start(srv fiber.Router) {
	attendance := srv.Group("/attendance")

	attendance.Post("/clock-in", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.ClockIn)
	attendance.Post("/clock-out", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.ClockOut)
	attendance.Get("/records", h.middleware.NewTokenMiddleware, h.GetRecords)
	attendance.Get("/records/:id", h.middleware.NewTokenMiddleware, h.GetRecordByID)
	attendance.Get("/review/flagged", h.middleware.NewTokenMiddleware, h.GetFlaggedRecords)
	attendance.Post("/review/:id/approve", h.middleware.NewTokenMiddleware, h.ApproveRecord)
	attendance.Post("/review/:id/reject", h.middleware.NewTokenMiddleware, h.RejectRecord)
}
