package fraud

import (
	"PresensiGolang/internal/entity"

	"golang.org/x/net/context"
)

type deviceDetector struct{}

func (d *deviceDetector) Name() string {
	return DetectorDevice
}

// An unknown device is only meaningful once the employee has device history;
// the first ever clock-in is never anomalous.
func (d *deviceDetector) Detect(_ context.Context, ec EventContext) entity.AnomalyFinding {
	finding := entity.AnomalyFinding{Detector: d.Name()}

	if ec.Event.DeviceID == "" || len(ec.History.KnownDevices) == 0 {
		return finding
	}

	for _, known := range ec.History.KnownDevices {
		if known == ec.Event.DeviceID {
			return finding
		}
	}

	finding.Anomalous = true
	finding.Evidence = map[string]interface{}{
		"reason":        "device fingerprint not seen before",
		"device_id":     ec.Event.DeviceID,
		"known_devices": len(ec.History.KnownDevices),
	}

	return finding
}
