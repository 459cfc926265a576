package fraud

import (
	"PresensiGolang/internal/entity"
	"math"

	"golang.org/x/net/context"
)

type locationDetector struct {
	cfg Config
}

func (d *locationDetector) Name() string {
	return DetectorLocation
}

// Location is only judged for onsite/hybrid events that actually carry a
// location. Remote work and missing coordinates are not anomalies here;
// the aggregator penalizes remote-without-location separately.
func (d *locationDetector) Detect(_ context.Context, ec EventContext) entity.AnomalyFinding {
	finding := entity.AnomalyFinding{Detector: d.Name()}

	if ec.Event.WorkMode == entity.WorkModeRemote || ec.Event.Location == nil {
		return finding
	}

	loc := ec.Event.Location

	if loc.Accuracy > d.cfg.MaxAccuracyM {
		finding.Anomalous = true
		finding.Evidence = map[string]interface{}{
			"reason":         "implausible location accuracy",
			"accuracy_m":     loc.Accuracy,
			"max_accuracy_m": d.cfg.MaxAccuracyM,
		}
		return finding
	}

	if ec.CompanyLocation == nil {
		return finding
	}

	distance := haversineMeters(*loc, *ec.CompanyLocation)
	if distance > d.cfg.GeofenceRadiusM {
		finding.Anomalous = true
		finding.Evidence = map[string]interface{}{
			"reason":            "outside company geofence",
			"distance_m":        math.Round(distance),
			"geofence_radius_m": d.cfg.GeofenceRadiusM,
			"latitude":          loc.Latitude,
			"longitude":         loc.Longitude,
		}
	}

	return finding
}

const earthRadiusM = 6371000.0

func haversineMeters(a, b entity.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}
