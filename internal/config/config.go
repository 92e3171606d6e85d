package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/longmaomaoa/ai-OpenChess/internal/eval"
	"github.com/longmaomaoa/ai-OpenChess/internal/vision"
	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// Config represents the application configuration
type Config struct {
	Vision    vision.Config   `json:"vision"`
	Regions   RegionMap       `json:"regions,omitempty"`
	Advisor   AdvisorConfig   `json:"advisor"`
	Storage   StorageConfig   `json:"storage"`
	Interface InterfaceConfig `json:"interface"`
}

// RegionMap names the board regions on screen, keyed by region id. Each
// named region is watched with the shared vision settings and its own
// geometry.
type RegionMap map[string]vision.CaptureRegion

// AdvisorConfig contains evaluation and recommendation settings
type AdvisorConfig struct {
	PlayerSide      string       `json:"player_side"` // "red" or "black"
	FirstSideToMove string       `json:"first_side_to_move"`
	MaxRecommends   int          `json:"max_recommendations"`
	Weights         eval.Weights `json:"weights"`
}

// StorageConfig contains game record settings
type StorageConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"db_path"`
}

// InterfaceConfig contains output and logging settings
type InterfaceConfig struct {
	LogLevel string `json:"log_level"`
	LogPath  string `json:"log_path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Vision: *vision.DefaultConfig(),
		Advisor: AdvisorConfig{
			PlayerSide:      "red",
			FirstSideToMove: "red",
			MaxRecommends:   5,
			Weights:         eval.DefaultWeights(),
		},
		Storage: StorageConfig{
			Enabled: true,
			DBPath:  "openchess.db",
		},
		Interface: InterfaceConfig{
			LogLevel: "info",
		},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if err := c.Vision.Validate(); err != nil {
		return err
	}
	if _, err := ParseSide(c.Advisor.PlayerSide); err != nil {
		return fmt.Errorf("player_side: %w", err)
	}
	if _, err := ParseSide(c.Advisor.FirstSideToMove); err != nil {
		return fmt.Errorf("first_side_to_move: %w", err)
	}
	if c.Advisor.MaxRecommends < 1 || c.Advisor.MaxRecommends > 50 {
		return fmt.Errorf("invalid max_recommendations: %d (must be 1-50)", c.Advisor.MaxRecommends)
	}
	if err := c.Advisor.Weights.Validate(); err != nil {
		return err
	}
	if c.Storage.Enabled && c.Storage.DBPath == "" {
		return fmt.Errorf("storage enabled but db_path is empty")
	}
	for id, region := range c.Regions {
		if id == "" {
			return fmt.Errorf("region with empty id")
		}
		if region.Width <= 0 || region.Height <= 0 {
			return fmt.Errorf("region %q has invalid dimensions %dx%d", id, region.Width, region.Height)
		}
	}
	return nil
}

// RegionIDs returns the named region ids in sorted order.
func (c *Config) RegionIDs() []string {
	ids := make([]string, 0, len(c.Regions))
	for id := range c.Regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VisionFor resolves the vision settings for one named region. An empty
// id returns the inline capture region unchanged.
func (c *Config) VisionFor(id string) (vision.Config, error) {
	cfg := c.Vision
	if id == "" {
		return cfg, nil
	}
	region, ok := c.Regions[id]
	if !ok {
		return cfg, fmt.Errorf("unknown region %q (have %v)", id, c.RegionIDs())
	}
	cfg.CaptureRegion = region
	return cfg, nil
}

// PlayerSide returns the configured side the advice is for.
func (c *Config) PlayerSide() xiangqi.Side {
	side, _ := ParseSide(c.Advisor.PlayerSide)
	return side
}

// FirstSide returns the side assumed to move on the first observed board.
func (c *Config) FirstSide() xiangqi.Side {
	side, _ := ParseSide(c.Advisor.FirstSideToMove)
	return side
}

// ParseSide converts a config string to a side.
func ParseSide(s string) (xiangqi.Side, error) {
	switch s {
	case "red", "Red":
		return xiangqi.Red, nil
	case "black", "Black":
		return xiangqi.Black, nil
	default:
		return xiangqi.Red, fmt.Errorf("unknown side %q (must be red or black)", s)
	}
}
