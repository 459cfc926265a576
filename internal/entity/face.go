package entity

import "time"

// EmbeddingSize is the dimension every face embedding must have, on both the
// enrollment and the verification path.
const EmbeddingSize = 512

// FaceEmbedding is a unit-normalized vector produced by the embedding
// service, together with the capture quality and detection confidence,
// both in [0,1].
type FaceEmbedding struct {
	Vector     []float64
	Quality    float64
	Confidence float64
}

// VerificationOutcome is the result of comparing a probe embedding against
// the stored reference. The threshold actually used is echoed back so the
// decision can be audited later.
type VerificationOutcome struct {
	Similarity float64 `json:"similarity"`
	IsMatch    bool    `json:"is_match"`
	Threshold  float64 `json:"threshold"`
}

// FaceIdentity is the enrolled reference embedding of one employee.
// Immutable once enrolled.
type FaceIdentity struct {
	UserID     string
	CompanyID  string
	Embedding  []float64
	Quality    float64
	PhotoURL   string
	EnrolledAt time.Time
}
