package enrollmentHandler

import (
	contextPkg "PresensiGolang/pkg/context"
	"PresensiGolang/pkg/handlerUtil"
	jwtPkg "PresensiGolang/pkg/jwt"
	"PresensiGolang/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"time"
)

func (h *EnrollmentHandler) EnrollFace(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing face enrollment request")

	userData, err := jwtPkg.GetEmployeeLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	faceImage, _ := ctx.FormFile("face_image")

	response, err := h.enrollmentService.EnrollFace(c, userData, faceImage)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "enroll_face")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, response)
	}
}
