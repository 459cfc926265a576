package fraud

import (
	"os"
	"strconv"
)

type Config struct {
	// Additive per-detector weights applied when a detector flags.
	LocationWeight   float64
	TimeWeight       float64
	DeviceWeight     float64
	BehavioralWeight float64
	PatternWeight    float64

	// Contextual penalties.
	LowSimilarityThreshold  float64
	LowSimilarityPenalty    float64
	RemoteNoLocationPenalty float64

	// Risk level boundaries (closed on the lower side).
	MediumThreshold   float64
	HighThreshold     float64
	CriticalThreshold float64

	// Records scoring at or above FlagThreshold transition to flagged status.
	FlagThreshold float64

	// Detector tuning.
	WorkdayStartHour   int
	WorkdayEndHour     int
	GeofenceRadiusM    float64
	MaxAccuracyM       float64
	BurstWindowMinutes int
	BurstCount         int
	PatternRepeatCount int
}

func DefaultConfig() Config {
	return Config{
		LocationWeight:   25,
		TimeWeight:       20,
		DeviceWeight:     15,
		BehavioralWeight: 20,
		PatternWeight:    20,

		LowSimilarityThreshold:  0.7,
		LowSimilarityPenalty:    30,
		RemoteNoLocationPenalty: 10,

		MediumThreshold:   60,
		HighThreshold:     80,
		CriticalThreshold: 90,

		FlagThreshold: 60,

		WorkdayStartHour:   6,
		WorkdayEndHour:     22,
		GeofenceRadiusM:    500,
		MaxAccuracyM:       1000,
		BurstWindowMinutes: 15,
		BurstCount:         3,
		PatternRepeatCount: 3,
	}
}

// NewConfigFromEnv overrides the two thresholds operators actually tune.
// Everything else stays at the defaults until a real model replaces the
// rule detectors.
func NewConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("FRAUD_FLAG_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil && threshold > 0 {
			cfg.FlagThreshold = threshold
		}
	}

	if v := os.Getenv("FRAUD_HIGH_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil && threshold > 0 {
			cfg.HighThreshold = threshold
		}
	}

	if v := os.Getenv("FRAUD_GEOFENCE_RADIUS_M"); v != "" {
		if radius, err := strconv.ParseFloat(v, 64); err == nil && radius > 0 {
			cfg.GeofenceRadiusM = radius
		}
	}

	return cfg
}
