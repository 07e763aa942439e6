package motion

import "testing"

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	cases := []struct {
		name   string
		modify func(cfg *Config)
	}{
		{"jump", func(cfg *Config) { cfg.MaxJumpDistance = 0 }},
		{"turn", func(cfg *Config) { cfg.MaxTurnAngle = -1 }},
		{"speed", func(cfg *Config) { cfg.MaxSpeedRatio = 0.5 }},
		{"missed", func(cfg *Config) { cfg.MissedFrames = 0 }},
		{"samples", func(cfg *Config) { cfg.MinSamples = 0 }},
		{"length", func(cfg *Config) { cfg.MinLength = -1 }},
		{"window", func(cfg *Config) { cfg.WindowSize = 1 }},
		{"scale", func(cfg *Config) { cfg.Scale = 0 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.modify(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestFeatureWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowSize = 3
	if cfg.FeatureWidth() != 14 {
		t.Errorf("Expected width 14, got %d", cfg.FeatureWidth())
	}
}
