package enrollment

type EnrollFaceRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type EnrollFaceResponse struct {
	UserID     string  `json:"user_id"`
	Quality    float64 `json:"quality"`
	EnrolledAt string  `json:"enrolled_at"`
}
