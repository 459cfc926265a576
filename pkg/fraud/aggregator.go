package fraud

import (
	"PresensiGolang/internal/entity"
	"time"
)

// AggregateInput carries the contextual signals that are not detector
// findings but still move the score.
type AggregateInput struct {
	Event          entity.ClockEvent
	FaceSimilarity *float64
}

type IAggregator interface {
	Aggregate(findings []entity.AnomalyFinding, input AggregateInput) entity.FraudAssessment
}

type aggregator struct {
	cfg Config
}

func NewAggregator(cfg Config) IAggregator {
	return &aggregator{cfg: cfg}
}

// Aggregate sums the weights of every flagged detector, applies the
// contextual penalties, and clamps to [0,100]. Fully deterministic so the
// same event always scores the same.
func (a *aggregator) Aggregate(findings []entity.AnomalyFinding, input AggregateInput) entity.FraudAssessment {
	byName := make(map[string]entity.AnomalyFinding, len(findings))
	for _, f := range findings {
		byName[f.Detector] = f
	}

	var score float64
	var flags []string
	positive := 0

	// Canonical order, independent of invocation order.
	ordered := make([]entity.AnomalyFinding, 0, len(findings))
	for _, name := range detectorOrder {
		f, ok := byName[name]
		if !ok {
			continue
		}
		ordered = append(ordered, f)
		if !f.Anomalous {
			continue
		}
		positive++
		score += a.weightOf(name)
		flags = append(flags, name)
	}

	if input.FaceSimilarity != nil && *input.FaceSimilarity < a.cfg.LowSimilarityThreshold {
		score += a.cfg.LowSimilarityPenalty
		flags = append(flags, "low_face_similarity")
		ordered = append(ordered, entity.AnomalyFinding{
			Detector:  "low_face_similarity",
			Anomalous: true,
			Evidence: map[string]interface{}{
				"similarity": *input.FaceSimilarity,
				"threshold":  a.cfg.LowSimilarityThreshold,
			},
		})
	}

	if input.Event.WorkMode == entity.WorkModeRemote && input.Event.Location == nil {
		score += a.cfg.RemoteNoLocationPenalty
		flags = append(flags, "remote_no_location")
		ordered = append(ordered, entity.AnomalyFinding{
			Detector:  "remote_no_location",
			Anomalous: true,
			Evidence: map[string]interface{}{
				"work_mode": string(entity.WorkModeRemote),
			},
		})
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	total := len(findings)
	confidence := 0.5
	if total > 0 {
		confidence = 0.5 + 0.5*float64(positive)/float64(total)
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	return entity.FraudAssessment{
		RiskScore:    score,
		RiskLevel:    a.levelOf(score),
		IsFraudulent: score >= a.cfg.HighThreshold,
		Flags:        flags,
		Confidence:   confidence,
		Findings:     ordered,
		AssessedAt:   time.Now().UTC(),
	}
}

func (a *aggregator) weightOf(detector string) float64 {
	switch detector {
	case DetectorLocation:
		return a.cfg.LocationWeight
	case DetectorTime:
		return a.cfg.TimeWeight
	case DetectorDevice:
		return a.cfg.DeviceWeight
	case DetectorBehavioral:
		return a.cfg.BehavioralWeight
	case DetectorPattern:
		return a.cfg.PatternWeight
	default:
		return 0
	}
}

func (a *aggregator) levelOf(score float64) entity.RiskLevel {
	switch {
	case score >= a.cfg.CriticalThreshold:
		return entity.RiskCritical
	case score >= a.cfg.HighThreshold:
		return entity.RiskHigh
	case score >= a.cfg.MediumThreshold:
		return entity.RiskMedium
	default:
		return entity.RiskLow
	}
}
