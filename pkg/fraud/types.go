package fraud

import (
	"PresensiGolang/internal/entity"
	"time"

	"golang.org/x/net/context"
)

// Detector names double as flag names in the assessment.
const (
	DetectorLocation   = "location"
	DetectorTime       = "time"
	DetectorDevice     = "device"
	DetectorBehavioral = "behavioral"
	DetectorPattern    = "pattern"
)

// detectorOrder fixes the flag ordering in assessments regardless of the
// order detectors were invoked in.
var detectorOrder = []string{
	DetectorLocation,
	DetectorTime,
	DetectorDevice,
	DetectorBehavioral,
	DetectorPattern,
}

// History is the per-employee signal history supplied by the caller.
// Any of it may be missing; detectors degrade to no-anomaly when their
// signal is absent.
type History struct {
	KnownDevices    []string
	LastLocation    *entity.Location
	RecentClockIns  []time.Time
	AttendanceCount int
}

// EventContext carries everything a detector may look at. Detectors are
// independent: none may read another detector's output.
type EventContext struct {
	Event           entity.ClockEvent
	History         History
	CompanyLocation *entity.Location
}

// Detector judges one dimension of a clock event. Implementations must be
// safe for concurrent use and callable in any order. The rule-based
// detectors in this package are stand-ins for model-backed ones; only the
// finding contract is stable.
type Detector interface {
	Name() string
	Detect(ctx context.Context, ec EventContext) entity.AnomalyFinding
}

// DefaultDetectors returns the five production detectors.
func DefaultDetectors(cfg Config) []Detector {
	return []Detector{
		&locationDetector{cfg: cfg},
		&timeDetector{cfg: cfg},
		&deviceDetector{},
		&behavioralDetector{cfg: cfg},
		&patternDetector{cfg: cfg},
	}
}
