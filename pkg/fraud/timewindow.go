package fraud

import (
	"PresensiGolang/internal/entity"
	"time"

	"golang.org/x/net/context"
)

type timeDetector struct {
	cfg Config
}

func (d *timeDetector) Name() string {
	return DetectorTime
}

func (d *timeDetector) Detect(_ context.Context, ec EventContext) entity.AnomalyFinding {
	finding := entity.AnomalyFinding{Detector: d.Name()}

	ts := ec.Event.Timestamp
	hour := ts.Hour()

	if hour < d.cfg.WorkdayStartHour || hour >= d.cfg.WorkdayEndHour {
		finding.Anomalous = true
		finding.Evidence = map[string]interface{}{
			"reason":       "clock event outside working hours",
			"hour":         hour,
			"workday_from": d.cfg.WorkdayStartHour,
			"workday_to":   d.cfg.WorkdayEndHour,
		}
		return finding
	}

	if weekday := ts.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
		finding.Anomalous = true
		finding.Evidence = map[string]interface{}{
			"reason":  "weekend clock event",
			"weekday": weekday.String(),
		}
	}

	return finding
}
