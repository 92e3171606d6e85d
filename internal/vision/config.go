package vision

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"time"

	"gocv.io/x/gocv"
)

// Config holds vision system configuration for one observed board.
type Config struct {
	// Screen capture settings
	CaptureRegion CaptureRegion `json:"capture_region"`

	// Template matching settings
	TemplateDir    string  `json:"template_dir"`
	MatchThreshold float64 `json:"match_threshold"` // template score floor

	// OCR settings
	UseOCR           bool    `json:"use_ocr"`
	TessdataLanguage string  `json:"tessdata_language"` // e.g. "chi_sim"
	OCRMinConfidence float64 `json:"ocr_min_confidence"`
	OCRPreference    float64 `json:"ocr_preference"` // OCR wins disagreements at or above this

	// Color classification settings
	ColorRatioMin      float64          `json:"color_ratio_min"`      // minimum mask ratio to call a side
	ColorOverrideRatio float64          `json:"color_override_ratio"` // ratio at which color may flip a label's side
	ColorThresholds    *ColorThresholds `json:"color_thresholds,omitempty"`

	// Scan loop settings
	DiffThreshold  float64 `json:"diff_threshold"`   // mean frame difference to trigger a scan
	ScanIntervalMs int     `json:"scan_interval_ms"` // cadence of the scan loop
	Workers        int     `json:"workers"`          // parallel cell recognizers
}

// CaptureRegion defines the screen area holding the board.
type CaptureRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToRectangle converts CaptureRegion to image.Rectangle
func (cr CaptureRegion) ToRectangle() image.Rectangle {
	return image.Rect(cr.X, cr.Y, cr.X+cr.Width, cr.Y+cr.Height)
}

// ColorThresholds defines the HSV ranges used to classify piece color.
// Red hue wraps around 180, so it needs two ranges.
type ColorThresholds struct {
	RedLower    gocv.Scalar
	RedUpper    gocv.Scalar
	RedAltLower gocv.Scalar
	RedAltUpper gocv.Scalar
	BlackLower  gocv.Scalar
	BlackUpper  gocv.Scalar
}

// DefaultColorThresholds returns HSV ranges for the common red/black piece
// paint.
func DefaultColorThresholds() ColorThresholds {
	return ColorThresholds{
		RedLower:    gocv.NewScalar(0, 100, 100, 0),
		RedUpper:    gocv.NewScalar(10, 255, 255, 0),
		RedAltLower: gocv.NewScalar(170, 100, 100, 0),
		RedAltUpper: gocv.NewScalar(180, 255, 255, 0),
		BlackLower:  gocv.NewScalar(0, 0, 0, 0),
		BlackUpper:  gocv.NewScalar(180, 255, 30, 0),
	}
}

// DefaultConfig returns default vision configuration
func DefaultConfig() *Config {
	return &Config{
		CaptureRegion: CaptureRegion{
			X:      100,
			Y:      100,
			Width:  720,
			Height: 800,
		},
		TemplateDir:        "templates",
		MatchThreshold:     0.70,
		UseOCR:             true,
		TessdataLanguage:   "chi_sim",
		OCRMinConfidence:   0.60,
		OCRPreference:      0.80,
		ColorRatioMin:      0.10,
		ColorOverrideRatio: 0.35,
		DiffThreshold:      10.0,
		ScanIntervalMs:     2000,
		Workers:            8,
	}
}

// ScanInterval returns the scan cadence as a duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalMs) * time.Millisecond
}

// FusionPolicy extracts the thresholds the fusion step needs.
func (c *Config) FusionPolicy() FusionPolicy {
	return FusionPolicy{
		TemplateMin:   c.MatchThreshold,
		OCRMin:        c.OCRMinConfidence,
		OCRPreference: c.OCRPreference,
		ColorOverride: c.ColorOverrideRatio,
	}
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a JSON file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CaptureRegion.Width <= 0 || c.CaptureRegion.Height <= 0 {
		return fmt.Errorf("invalid capture region dimensions")
	}

	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("invalid match threshold: %f (must be 0-1)", c.MatchThreshold)
	}

	if c.OCRMinConfidence < 0 || c.OCRMinConfidence > 1 {
		return fmt.Errorf("invalid OCR confidence minimum: %f (must be 0-1)", c.OCRMinConfidence)
	}

	if c.OCRPreference < 0 || c.OCRPreference > 1 {
		return fmt.Errorf("invalid OCR preference threshold: %f (must be 0-1)", c.OCRPreference)
	}

	if c.ColorRatioMin < 0 || c.ColorRatioMin > 1 {
		return fmt.Errorf("invalid color ratio minimum: %f (must be 0-1)", c.ColorRatioMin)
	}

	if c.DiffThreshold < 0 || c.DiffThreshold > 255 {
		return fmt.Errorf("invalid diff threshold: %f (must be 0-255)", c.DiffThreshold)
	}

	if c.ScanIntervalMs < 100 {
		return fmt.Errorf("invalid scan interval: %dms (must be at least 100)", c.ScanIntervalMs)
	}

	if c.Workers < 1 || c.Workers > 90 {
		return fmt.Errorf("invalid worker count: %d (must be 1-90)", c.Workers)
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(
		"Vision Config:\n"+
			"  Capture Region: (%d,%d) %dx%d\n"+
			"  Template Dir: %s\n"+
			"  Match Threshold: %.2f\n"+
			"  OCR: %v (%s, min %.2f)\n"+
			"  Color Ratio Min: %.2f\n"+
			"  Diff Threshold: %.1f\n"+
			"  Scan Interval: %v\n"+
			"  Workers: %d\n",
		c.CaptureRegion.X, c.CaptureRegion.Y,
		c.CaptureRegion.Width, c.CaptureRegion.Height,
		c.TemplateDir,
		c.MatchThreshold,
		c.UseOCR, c.TessdataLanguage, c.OCRMinConfidence,
		c.ColorRatioMin,
		c.DiffThreshold,
		c.ScanInterval(),
		c.Workers,
	)
}
