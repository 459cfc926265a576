package handlerUtil

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/api/enrollment"
	"PresensiGolang/pkg/faceengine"
	"PresensiGolang/pkg/facematch"
	"PresensiGolang/pkg/log"
	"PresensiGolang/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle maps domain errors to their HTTP responses. Named errors are
// matched first so their code strings survive; any other *response.Error
// falls back to its embedded status code.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	// Face engine errors
	if errors.Is(err, faceengine.ErrNoFaceDetected) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No face detected in image")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "No face detected in image",
			"code":  "NO_FACE_DETECTED",
		})
	}

	if errors.Is(err, faceengine.ErrLowQualityImage) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Image quality below minimum")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Image quality below minimum",
			"code":  "LOW_QUALITY_IMAGE",
		})
	}

	if errors.Is(err, faceengine.ErrServiceDown) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Face service unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Face service unavailable",
			"code":  "FACE_SERVICE_UNAVAILABLE",
		})
	}

	if errors.Is(err, facematch.ErrDimensionMismatch) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Embedding dimension mismatch")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Stored reference is incompatible, re-enrollment required",
			"code":  "EMBEDDING_DIMENSION_MISMATCH",
		})
	}

	// Attendance domain errors
	if errors.Is(err, attendance.ErrFaceVerificationFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Face verification failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Face verification failed",
			"code":  "FACE_VERIFICATION_FAILED",
		})
	}

	if errors.Is(err, attendance.ErrFaceNotEnrolled) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No face reference enrolled")
		return c.Status(fiber.StatusPreconditionFailed).JSON(fiber.Map{
			"error": "No face reference enrolled for user",
			"code":  "FACE_NOT_ENROLLED",
		})
	}

	if errors.Is(err, attendance.ErrRecordNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Attendance record not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Attendance record not found",
			"code":  "RECORD_NOT_FOUND",
		})
	}

	if errors.Is(err, attendance.ErrRecordAccessDenied) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Attendance record access denied")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Attendance record does not belong to user",
			"code":  "ACCESS_DENIED",
		})
	}

	if errors.Is(err, attendance.ErrAlreadyClockedOut) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Record already clocked out")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Attendance record already clocked out",
			"code":  "ALREADY_CLOCKED_OUT",
		})
	}

	if errors.Is(err, attendance.ErrActiveSessionExists) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Active attendance session exists")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "An active attendance session already exists",
			"code":  "ACTIVE_SESSION_EXISTS",
		})
	}

	if errors.Is(err, attendance.ErrRecordAlreadyReviewed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Record already reviewed")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Attendance record already reviewed",
			"code":  "RECORD_ALREADY_REVIEWED",
		})
	}

	if errors.Is(err, attendance.ErrReviewNotAllowed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Reviewer role required")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Reviewer role required",
			"code":  "REVIEWER_ROLE_REQUIRED",
		})
	}

	if errors.Is(err, attendance.ErrMissingFaceImage) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Face image missing or invalid")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A face image is required",
			"code":  "MISSING_FACE_IMAGE",
		})
	}

	// Enrollment domain errors
	if errors.Is(err, enrollment.ErrAlreadyEnrolled) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Face already enrolled")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Face already enrolled for user",
			"code":  "ALREADY_ENROLLED",
		})
	}

	if errors.Is(err, enrollment.ErrNotEnrolled) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No face enrolled")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No face enrolled for user",
			"code":  "NOT_ENROLLED",
		})
	}

	if errors.Is(err, enrollment.ErrMissingImage) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Enrollment image missing or invalid")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A face image is required",
			"code":  "MISSING_FACE_IMAGE",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
