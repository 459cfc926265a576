package enrollment

import "PresensiGolang/pkg/response"

var (
	ErrAlreadyEnrolled = response.NewError(409, "face already enrolled for user")
	ErrNotEnrolled     = response.NewError(404, "no face enrolled for user")
	ErrMissingImage    = response.NewError(400, "face image is required")
	ErrCreateIdentity  = response.NewError(500, "failed to store face identity")
)
