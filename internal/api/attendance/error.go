package attendance

import "PresensiGolang/pkg/response"

var (
	ErrFaceVerificationFailed = response.NewError(401, "face verification failed")
	ErrFaceNotEnrolled        = response.NewError(412, "no face reference enrolled for user")
	ErrRecordNotFound         = response.NewError(404, "attendance record not found")
	ErrRecordAccessDenied     = response.NewError(403, "attendance record does not belong to user")
	ErrAlreadyClockedOut      = response.NewError(409, "attendance record already clocked out")
	ErrActiveSessionExists    = response.NewError(409, "an active attendance session already exists")
	ErrRecordAlreadyReviewed  = response.NewError(409, "attendance record already reviewed")
	ErrReviewNotAllowed       = response.NewError(403, "reviewer role required")
	ErrMissingFaceImage       = response.NewError(400, "face image is required")
	ErrCreateRecord           = response.NewError(500, "failed to create attendance record")
	ErrUpdateRecord           = response.NewError(500, "failed to update attendance record")
)
