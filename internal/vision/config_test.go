package vision

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	if config.ScanInterval() != 2*time.Second {
		t.Errorf("scan interval = %v, want 2s", config.ScanInterval())
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		modifyFn  func(*Config)
		expectErr bool
	}{
		{
			name:      "valid config",
			modifyFn:  func(c *Config) {},
			expectErr: false,
		},
		{
			name: "zero capture width",
			modifyFn: func(c *Config) {
				c.CaptureRegion.Width = 0
			},
			expectErr: true,
		},
		{
			name: "match threshold above one",
			modifyFn: func(c *Config) {
				c.MatchThreshold = 1.5
			},
			expectErr: true,
		},
		{
			name: "negative OCR confidence",
			modifyFn: func(c *Config) {
				c.OCRMinConfidence = -0.1
			},
			expectErr: true,
		},
		{
			name: "color ratio above one",
			modifyFn: func(c *Config) {
				c.ColorRatioMin = 2.0
			},
			expectErr: true,
		},
		{
			name: "diff threshold above 255",
			modifyFn: func(c *Config) {
				c.DiffThreshold = 300
			},
			expectErr: true,
		},
		{
			name: "scan interval too short",
			modifyFn: func(c *Config) {
				c.ScanIntervalMs = 50
			},
			expectErr: true,
		},
		{
			name: "too many workers",
			modifyFn: func(c *Config) {
				c.Workers = 200
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modifyFn(config)

			err := config.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vision.json")

	config := DefaultConfig()
	config.CaptureRegion = CaptureRegion{X: 40, Y: 60, Width: 540, Height: 600}
	config.Workers = 4

	if err := config.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.CaptureRegion != config.CaptureRegion {
		t.Errorf("capture region = %+v, want %+v", loaded.CaptureRegion, config.CaptureRegion)
	}
	if loaded.Workers != 4 {
		t.Errorf("workers = %d, want 4", loaded.Workers)
	}
	if loaded.TessdataLanguage != "chi_sim" {
		t.Errorf("language = %q, want chi_sim", loaded.TessdataLanguage)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vision.json")

	config := DefaultConfig()
	config.ScanIntervalMs = 10
	if err := config.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error loading invalid config")
	}
}

func TestFusionPolicyExtraction(t *testing.T) {
	config := DefaultConfig()
	policy := config.FusionPolicy()

	if policy.TemplateMin != config.MatchThreshold {
		t.Errorf("TemplateMin = %v, want %v", policy.TemplateMin, config.MatchThreshold)
	}
	if policy.OCRMin != config.OCRMinConfidence {
		t.Errorf("OCRMin = %v, want %v", policy.OCRMin, config.OCRMinConfidence)
	}
	if policy.OCRPreference != config.OCRPreference {
		t.Errorf("OCRPreference = %v, want %v", policy.OCRPreference, config.OCRPreference)
	}
	if policy.ColorOverride != config.ColorOverrideRatio {
		t.Errorf("ColorOverride = %v, want %v", policy.ColorOverride, config.ColorOverrideRatio)
	}
}
