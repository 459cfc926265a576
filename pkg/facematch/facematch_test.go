package facematch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type VerifierSuite struct {
	suite.Suite
	verifier IVerifier
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.verifier = New(Config{EmbeddingSize: 4, MatchThreshold: 0.6})
}

func (s *VerifierSuite) TestCompare() {
	s.Run("identical vectors match with similarity 1", func() {
		vec := Normalize([]float64{0.5, 0.1, -0.3, 0.8})

		outcome, err := s.verifier.Compare(vec, vec)

		s.Require().NoError(err)
		s.InDelta(1.0, outcome.Similarity, 1e-9)
		s.True(outcome.IsMatch)
	})

	s.Run("orthogonal vectors do not match", func() {
		outcome, err := s.verifier.Compare(
			[]float64{1, 0, 0, 0},
			[]float64{0, 1, 0, 0},
		)

		s.Require().NoError(err)
		s.InDelta(0.0, outcome.Similarity, 1e-9)
		s.False(outcome.IsMatch)
	})

	s.Run("similarity below threshold does not match", func() {
		outcome, err := s.verifier.Compare(
			[]float64{1, 0, 0, 0},
			Normalize([]float64{0.5, 1, 0, 0}),
		)

		s.Require().NoError(err)
		s.Less(outcome.Similarity, 0.6)
		s.False(outcome.IsMatch)
	})

	s.Run("threshold is echoed in the outcome", func() {
		vec := []float64{1, 0, 0, 0}

		outcome, err := s.verifier.Compare(vec, vec)

		s.Require().NoError(err)
		s.Equal(0.6, outcome.Threshold)
	})

	s.Run("reference dimension mismatch returns error", func() {
		_, err := s.verifier.Compare([]float64{1, 0}, []float64{1, 0, 0, 0})

		s.Require().Error(err)
		s.ErrorIs(err, ErrDimensionMismatch)
	})

	s.Run("probe dimension mismatch returns error", func() {
		_, err := s.verifier.Compare([]float64{1, 0, 0, 0}, []float64{1, 0})

		s.Require().Error(err)
		s.ErrorIs(err, ErrDimensionMismatch)
	})
}

func (s *VerifierSuite) TestCosineSimilarity() {
	s.Run("zero norm yields zero instead of NaN", func() {
		sim := CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3})

		s.Equal(0.0, sim)
		s.False(math.IsNaN(sim))
	})

	s.Run("opposite vectors yield minus one", func() {
		sim := CosineSimilarity([]float64{1, 2, 3}, []float64{-1, -2, -3})

		s.InDelta(-1.0, sim, 1e-9)
	})
}

func (s *VerifierSuite) TestNormalize() {
	s.Run("result has unit norm", func() {
		out := Normalize([]float64{3, 4})

		var norm float64
		for _, x := range out {
			norm += x * x
		}
		s.InDelta(1.0, norm, 1e-9)
	})

	s.Run("zero vector is returned unchanged", func() {
		out := Normalize([]float64{0, 0, 0})

		s.Equal([]float64{0, 0, 0}, out)
	})

	s.Run("input is not mutated", func() {
		in := []float64{3, 4}
		Normalize(in)

		s.Equal([]float64{3, 4}, in)
	})
}
