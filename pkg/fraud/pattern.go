package fraud

import (
	"PresensiGolang/internal/entity"
	"fmt"
	"hash/fnv"

	"golang.org/x/net/context"
)

// patternDetector looks for clock-ins landing on the same minute of day
// across history, a signature of automated punching. Deterministic rule
// strategy behind the Detector contract.
type patternDetector struct {
	cfg Config
}

func (d *patternDetector) Name() string {
	return DetectorPattern
}

func (d *patternDetector) Detect(_ context.Context, ec EventContext) entity.AnomalyFinding {
	finding := entity.AnomalyFinding{Detector: d.Name()}

	minute := ec.Event.Timestamp.Hour()*60 + ec.Event.Timestamp.Minute()

	repeats := 0
	for _, ts := range ec.History.RecentClockIns {
		if ts.Hour()*60+ts.Minute() == minute {
			repeats++
		}
	}

	if repeats >= d.cfg.PatternRepeatCount {
		finding.Anomalous = true
		finding.Evidence = map[string]interface{}{
			"reason":        "repeated clock-in minute across history",
			"minute_of_day": minute,
			"repeats":       repeats,
			"repeat_count":  d.cfg.PatternRepeatCount,
			"signature":     patternSignature(ec.Event.UserID, minute),
		}
	}

	return finding
}

// patternSignature identifies one user/minute pattern stably across
// assessments so reviewers can correlate repeat offenders.
func patternSignature(userID string, minute int) string {
	h := fnv.New32a()
	h.Write([]byte(fmt.Sprintf("%s:%d", userID, minute)))
	return fmt.Sprintf("%08x", h.Sum32())
}
