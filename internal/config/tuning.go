// Package config loads tuning parameters for trajectory tracking from JSON files.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/LdDl/motion-features/motion"
	"github.com/pkg/errors"
)

const (
	// DefaultMinBallArea is the smallest contour area (px^2) accepted as a candidate
	DefaultMinBallArea = 200.0
	// DefaultMaxBallArea is the largest contour area (px^2) accepted as a candidate
	DefaultMaxBallArea = 600.0

	maxFileSize = 1 * 1024 * 1024
)

// TuningConfig is the on-disk form of tracker and detector parameters.
// Every field is optional: unset fields keep defaults.
type TuningConfig struct {
	// Trajectory params
	MaxJumpDistance *float64 `json:"max_jump_distance,omitempty"`
	MaxTurnAngle    *float64 `json:"max_turn_angle,omitempty"`
	MaxSpeedRatio   *float64 `json:"max_speed_ratio,omitempty"`
	MissedFrames    *int     `json:"missed_frames,omitempty"`
	MinSamples      *int     `json:"min_samples,omitempty"`
	MinLength       *float64 `json:"min_length,omitempty"`
	Scale           *float64 `json:"scale,omitempty"`

	// Track manager params
	WindowSize *int `json:"window_size,omitempty"`

	// Detector params
	MinBallArea *float64 `json:"min_ball_area,omitempty"`
	MaxBallArea *float64 `json:"max_ball_area,omitempty"`
}

// Load reads TuningConfig from a .json file and validates the resulting tracker config
func Load(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "Can't stat config file")
	}
	if info.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read config file")
	}
	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "Can't parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid configuration")
	}
	return cfg, nil
}

// Validate checks tracker params applied over defaults and detector area bounds
func (tc *TuningConfig) Validate() error {
	if err := tc.Apply(motion.DefaultConfig()).Validate(); err != nil {
		return err
	}
	minArea, maxArea := tc.GetMinBallArea(), tc.GetMaxBallArea()
	if minArea < 0 || maxArea <= minArea {
		return errors.Errorf("ball area bounds must satisfy 0 <= min < max, got [%f, %f]", minArea, maxArea)
	}
	return nil
}

// Apply returns base with every field set in tc overridden
func (tc *TuningConfig) Apply(base motion.Config) motion.Config {
	if tc == nil {
		return base
	}
	if tc.MaxJumpDistance != nil {
		base.MaxJumpDistance = *tc.MaxJumpDistance
	}
	if tc.MaxTurnAngle != nil {
		base.MaxTurnAngle = *tc.MaxTurnAngle
	}
	if tc.MaxSpeedRatio != nil {
		base.MaxSpeedRatio = *tc.MaxSpeedRatio
	}
	if tc.MissedFrames != nil {
		base.MissedFrames = *tc.MissedFrames
	}
	if tc.MinSamples != nil {
		base.MinSamples = *tc.MinSamples
	}
	if tc.MinLength != nil {
		base.MinLength = *tc.MinLength
	}
	if tc.Scale != nil {
		base.Scale = *tc.Scale
	}
	if tc.WindowSize != nil {
		base.WindowSize = *tc.WindowSize
	}
	return base
}

func (tc *TuningConfig) GetMinBallArea() float64 {
	if tc == nil || tc.MinBallArea == nil {
		return DefaultMinBallArea
	}
	return *tc.MinBallArea
}

func (tc *TuningConfig) GetMaxBallArea() float64 {
	if tc == nil || tc.MaxBallArea == nil {
		return DefaultMaxBallArea
	}
	return *tc.MaxBallArea
}
