package motion

import (
	"github.com/pkg/errors"
)

// Config holds tunable thresholds for trajectories and the track manager.
// Distances and lengths are compared after multiplication by Scale.
type Config struct {
	// Maximum scaled distance between consecutive samples. Default 50.0
	MaxJumpDistance float64
	// Maximum deviation (degrees) between incoming bearings of consecutive segments. Default 15.0
	MaxTurnAngle float64
	// Maximum ratio between speeds of consecutive segments, checked both ways. Default 2.0
	MaxSpeedRatio float64
	// Number of frames without a match after which trajectory is done. Default 3
	MissedFrames int
	// Minimum number of samples of a valid trajectory. Default 6
	MinSamples int
	// Minimum scaled path length of a valid trajectory. Default 50.0
	MinLength float64
	// Number of finalized trajectories forming one feature vector. Default 10
	WindowSize int
	// Multiplier converting pixels into normalized units. Default 1.0
	Scale float64
}

// DefaultConfig returns default thresholds
func DefaultConfig() Config {
	return Config{
		MaxJumpDistance: 50.0,
		MaxTurnAngle:    15.0,
		MaxSpeedRatio:   2.0,
		MissedFrames:    3,
		MinSamples:      6,
		MinLength:       50.0,
		WindowSize:      10,
		Scale:           1.0,
	}
}

// FeatureWidth returns number of values in a single feature vector
func (cfg Config) FeatureWidth() int {
	return StatsFields * (cfg.WindowSize - 1)
}

// Validate checks that thresholds are usable
func (cfg Config) Validate() error {
	if cfg.MaxJumpDistance <= 0 {
		return errors.Errorf("max jump distance must be positive, got %f", cfg.MaxJumpDistance)
	}
	if cfg.MaxTurnAngle <= 0 {
		return errors.Errorf("max turn angle must be positive, got %f", cfg.MaxTurnAngle)
	}
	if cfg.MaxSpeedRatio < 1 {
		return errors.Errorf("max speed ratio must be at least 1, got %f", cfg.MaxSpeedRatio)
	}
	if cfg.MissedFrames < 1 {
		return errors.Errorf("missed frames must be at least 1, got %d", cfg.MissedFrames)
	}
	if cfg.MinSamples < 1 {
		return errors.Errorf("min samples must be at least 1, got %d", cfg.MinSamples)
	}
	if cfg.MinLength < 0 {
		return errors.Errorf("min length must not be negative, got %f", cfg.MinLength)
	}
	if cfg.WindowSize < 2 {
		return errors.Errorf("window size must be at least 2, got %d", cfg.WindowSize)
	}
	if cfg.Scale <= 0 {
		return errors.Errorf("scale must be positive, got %f", cfg.Scale)
	}
	return nil
}
