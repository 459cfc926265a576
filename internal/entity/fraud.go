package entity

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// AnomalyFinding is the judgment of a single detector about one dimension of
// a clock event. Evidence must carry the raw values and thresholds the
// detector compared, so a reviewer can reconstruct the decision.
type AnomalyFinding struct {
	Detector  string                 `json:"detector"`
	Anomalous bool                   `json:"anomalous"`
	Evidence  map[string]interface{} `json:"evidence,omitempty"`
}

// FraudAssessment combines all detector findings into one score, level, and
// fraud determination. Stored on the attendance record as a structured blob.
type FraudAssessment struct {
	RiskScore    float64          `json:"risk_score"`
	RiskLevel    RiskLevel        `json:"risk_level"`
	IsFraudulent bool             `json:"is_fraudulent"`
	Flags        []string         `json:"flags"`
	Confidence   float64          `json:"confidence"`
	Findings     []AnomalyFinding `json:"findings"`
	AssessedAt   time.Time        `json:"assessed_at"`
}
