package config

import (
	"path/filepath"
	"testing"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default returned nil")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config failed validation: %v", err)
	}

	if cfg.Advisor.MaxRecommends != 5 {
		t.Errorf("Expected MaxRecommends 5, got %d", cfg.Advisor.MaxRecommends)
	}

	if cfg.PlayerSide() != xiangqi.Red {
		t.Errorf("Expected default player side Red, got %v", cfg.PlayerSide())
	}
}

func TestValidation(t *testing.T) {
	cfg := Default()

	// Test invalid player side
	cfg.Advisor.PlayerSide = "green"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for invalid player side")
	}
	cfg.Advisor.PlayerSide = "red"

	// Test invalid recommendation count
	cfg.Advisor.MaxRecommends = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for invalid max_recommendations")
	}
	cfg.Advisor.MaxRecommends = 5

	// Test invalid weights
	cfg.Advisor.Weights.Material = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for negative material weight")
	}
	cfg.Advisor.Weights.Material = 1.0

	// Test storage enabled without a path
	cfg.Storage.DBPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty db_path")
	}
	cfg.Storage.DBPath = "openchess.db"

	// Invalid vision settings surface through the top-level validation
	cfg.Vision.ScanIntervalMs = 10
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for invalid scan interval")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Advisor.PlayerSide = "black"
	cfg.Advisor.MaxRecommends = 3
	cfg.Storage.DBPath = "session.db"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.PlayerSide() != xiangqi.Black {
		t.Errorf("Expected player side Black, got %v", loaded.PlayerSide())
	}
	if loaded.Advisor.MaxRecommends != 3 {
		t.Errorf("Expected MaxRecommends 3, got %d", loaded.Advisor.MaxRecommends)
	}
	if loaded.Storage.DBPath != "session.db" {
		t.Errorf("Expected db_path session.db, got %s", loaded.Storage.DBPath)
	}
}

func TestNamedRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Regions = RegionMap{
		"left":  {X: 50, Y: 80, Width: 540, Height: 600},
		"right": {X: 700, Y: 80, Width: 540, Height: 600},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config with regions failed validation: %v", err)
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if len(loaded.Regions) != 2 {
		t.Fatalf("Expected 2 regions after load, got %d", len(loaded.Regions))
	}

	ids := loaded.RegionIDs()
	if len(ids) != 2 || ids[0] != "left" || ids[1] != "right" {
		t.Errorf("Expected sorted ids [left right], got %v", ids)
	}

	vis, err := loaded.VisionFor("right")
	if err != nil {
		t.Fatalf("Failed to resolve region: %v", err)
	}
	if vis.CaptureRegion.X != 700 {
		t.Errorf("Expected region geometry x=700, got %d", vis.CaptureRegion.X)
	}
	if vis.MatchThreshold != loaded.Vision.MatchThreshold {
		t.Error("Named region should inherit the shared vision settings")
	}

	// The inline region stays reachable with an empty id.
	inline, err := loaded.VisionFor("")
	if err != nil {
		t.Fatalf("Failed to resolve inline region: %v", err)
	}
	if inline.CaptureRegion != loaded.Vision.CaptureRegion {
		t.Error("Empty id should return the inline capture region")
	}

	if _, err := loaded.VisionFor("center"); err == nil {
		t.Error("Expected error for unknown region id")
	}
}

func TestRegionValidation(t *testing.T) {
	cfg := Default()

	cfg.Regions = RegionMap{"left": {Width: 0, Height: 600}}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for region with zero width")
	}

	cfg.Regions = RegionMap{"": {X: 10, Y: 10, Width: 540, Height: 600}}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for region with empty id")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in      string
		want    xiangqi.Side
		wantErr bool
	}{
		{"red", xiangqi.Red, false},
		{"Red", xiangqi.Red, false},
		{"black", xiangqi.Black, false},
		{"Black", xiangqi.Black, false},
		{"", xiangqi.Red, true},
		{"blue", xiangqi.Red, true},
	}

	for _, tt := range tests {
		got, err := ParseSide(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSide(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSide(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSide(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
