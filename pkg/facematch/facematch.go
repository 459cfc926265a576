package facematch

import (
	"PresensiGolang/internal/entity"
	"PresensiGolang/pkg/response"
	"math"
	"os"
	"strconv"
)

var ErrDimensionMismatch = response.NewError(500, "embedding dimension mismatch")

const (
	DefaultEmbeddingSize  = entity.EmbeddingSize
	DefaultMatchThreshold = 0.6
)

type Config struct {
	EmbeddingSize  int
	MatchThreshold float64
}

func DefaultConfig() Config {
	return Config{
		EmbeddingSize:  DefaultEmbeddingSize,
		MatchThreshold: DefaultMatchThreshold,
	}
}

// NewConfigFromEnv reads FACE_MATCH_THRESHOLD and FACE_EMBEDDING_SIZE,
// falling back to the defaults when unset or malformed.
func NewConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("FACE_MATCH_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil && threshold > 0 && threshold <= 1 {
			cfg.MatchThreshold = threshold
		}
	}

	if v := os.Getenv("FACE_EMBEDDING_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			cfg.EmbeddingSize = size
		}
	}

	return cfg
}

// Verifier compares a probe embedding against a stored reference. Pure
// computation, no I/O, safe for concurrent use.
type IVerifier interface {
	Compare(reference, probe []float64) (entity.VerificationOutcome, error)
}

type verifier struct {
	cfg Config
}

func New(cfg Config) IVerifier {
	return &verifier{cfg: cfg}
}

func (v *verifier) Compare(reference, probe []float64) (entity.VerificationOutcome, error) {
	if len(reference) != v.cfg.EmbeddingSize || len(probe) != v.cfg.EmbeddingSize {
		return entity.VerificationOutcome{}, ErrDimensionMismatch
	}

	similarity := CosineSimilarity(reference, probe)

	return entity.VerificationOutcome{
		Similarity: similarity,
		IsMatch:    similarity >= v.cfg.MatchThreshold,
		Threshold:  v.cfg.MatchThreshold,
	}, nil
}

// CosineSimilarity returns the dot product of a and b divided by the product
// of their norms. A zero norm on either side yields 0 instead of dividing
// by zero. Callers must ensure equal lengths.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize returns a unit-norm copy of vec. A zero vector is returned
// unchanged.
func Normalize(vec []float64) []float64 {
	var norm float64
	for _, x := range vec {
		norm += x * x
	}

	out := make([]float64, len(vec))
	if norm == 0 {
		copy(out, vec)
		return out
	}

	norm = math.Sqrt(norm)
	for i, x := range vec {
		out[i] = x / norm
	}

	return out
}
