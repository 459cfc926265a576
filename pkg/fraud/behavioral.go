package fraud

import (
	"PresensiGolang/internal/entity"
	"time"

	"golang.org/x/net/context"
)

// behavioralDetector flags bursts of clock events in a short window, the
// strongest simple signal for scripted check-ins. Deterministic rule
// strategy; swap for a model-backed Detector when one exists.
type behavioralDetector struct {
	cfg Config
}

func (d *behavioralDetector) Name() string {
	return DetectorBehavioral
}

func (d *behavioralDetector) Detect(_ context.Context, ec EventContext) entity.AnomalyFinding {
	finding := entity.AnomalyFinding{Detector: d.Name()}

	window := time.Duration(d.cfg.BurstWindowMinutes) * time.Minute
	cutoff := ec.Event.Timestamp.Add(-window)

	recent := 0
	for _, ts := range ec.History.RecentClockIns {
		if ts.After(cutoff) && !ts.After(ec.Event.Timestamp) {
			recent++
		}
	}

	// The current event itself counts toward the burst.
	if recent+1 >= d.cfg.BurstCount {
		finding.Anomalous = true
		finding.Evidence = map[string]interface{}{
			"reason":         "burst of clock events",
			"events":         recent + 1,
			"window_minutes": d.cfg.BurstWindowMinutes,
			"burst_count":    d.cfg.BurstCount,
		}
	}

	return finding
}
