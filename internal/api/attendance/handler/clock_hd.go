package attendanceHandler

import (
	"PresensiGolang/internal/api/attendance"
	contextPkg "PresensiGolang/pkg/context"
	"PresensiGolang/pkg/handlerUtil"
	jwtPkg "PresensiGolang/pkg/jwt"
	"PresensiGolang/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"time"
)

func (h *AttendanceHandler) ClockIn(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing clock-in request")

	var req attendance.ClockInRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetEmployeeLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	req.UserID = userData.ID
	req.CompanyID = userData.CompanyID

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	faceImage, _ := ctx.FormFile("face_image")

	response, err := h.attendanceService.ClockIn(c, req, faceImage, ctx.Get("User-Agent"), ctx.IP())
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "clock_in")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, response)
	}
}

func (h *AttendanceHandler) ClockOut(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing clock-out request")

	var req attendance.ClockOutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetEmployeeLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	req.UserID = userData.ID

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	faceImage, _ := ctx.FormFile("face_image")

	response, err := h.attendanceService.ClockOut(c, req, faceImage)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "clock_out")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}
