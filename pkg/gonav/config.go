package gonav

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gonav/internal/core"
	"gonav/internal/follower"
	"gonav/internal/navigation"
)

// Config holds configuration for the engine
type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Movement MovementConfig `yaml:"movement"`

	// Debug sends engine logs to stderr
	Debug bool `yaml:"debug"`
}

// GridConfig controls how the navigation graph is sampled and searched
type GridConfig struct {
	Spacing             float64 `yaml:"grid_spacing"`
	SafetyMargin        float64 `yaml:"safety_margin"`
	StrictWalkability   bool    `yaml:"strict_walkability"`
	PerpendicularChecks bool    `yaml:"perpendicular_checks"`
	DenseSampling       bool    `yaml:"dense_sampling"`
	SampleFactor        float64 `yaml:"sample_factor"`
	MinSamples          int     `yaml:"min_samples"`
	SearchRadius        int     `yaml:"search_radius"` // Nearest-node scan radius in cells
	RemoveIsolated      bool    `yaml:"remove_isolated"`
	MaxNodes            int     `yaml:"max_nodes"`
	MaxSearchNodes      int     `yaml:"max_search_nodes"` // 0 searches without a limit
}

// MovementConfig controls agents
type MovementConfig struct {
	Speed            float64 `yaml:"move_speed"`
	ArrivalThreshold float64 `yaml:"arrival_threshold"`
	DynamicObstacles bool    `yaml:"dynamic_obstacles"`
	ShowPath         bool    `yaml:"show_path"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Spacing:             0.25,
			SafetyMargin:        0.3,
			StrictWalkability:   true,
			PerpendicularChecks: true,
			DenseSampling:       true,
			SampleFactor:        0.1,
			MinSamples:          10,
			SearchRadius:        5,
			RemoveIsolated:      true,
			MaxNodes:            1 << 20,
		},
		Movement: MovementConfig{
			Speed:            5,
			ArrivalThreshold: 0.05,
			DynamicObstacles: true,
			ShowPath:         true,
		},
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep
// their default values.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("gonav: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("gonav: unmarshal %s: %w", filename, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("gonav: %s: %w", filename, err)
	}
	return config, nil
}

// Validate checks every section
func (c Config) Validate() error {
	if err := c.oracleConfig().Validate(); err != nil {
		return err
	}
	if c.Grid.SearchRadius < 0 {
		return core.NewConfigError("search_radius", "must be non-negative, got %d", c.Grid.SearchRadius)
	}
	if c.Grid.MaxNodes < 0 {
		return core.NewConfigError("max_nodes", "must be non-negative, got %d", c.Grid.MaxNodes)
	}
	if c.Grid.MaxSearchNodes < 0 {
		return core.NewConfigError("max_search_nodes", "must be non-negative, got %d", c.Grid.MaxSearchNodes)
	}
	return c.followerConfig().Validate()
}

func (c Config) oracleConfig() navigation.OracleConfig {
	return navigation.OracleConfig{
		Spacing:       c.Grid.Spacing,
		SafetyMargin:  c.Grid.SafetyMargin,
		Strict:        c.Grid.StrictWalkability,
		Perpendicular: c.Grid.PerpendicularChecks,
		SampleFactor:  c.Grid.SampleFactor,
		MinSamples:    c.Grid.MinSamples,
	}
}

func (c Config) buildConfig() navigation.BuildConfig {
	return navigation.BuildConfig{
		Oracle:         c.oracleConfig(),
		Dense:          c.Grid.DenseSampling,
		RemoveIsolated: c.Grid.RemoveIsolated,
		MaxNodes:       c.Grid.MaxNodes,
	}
}

func (c Config) followerConfig() follower.Config {
	return follower.Config{
		Speed:            c.Movement.Speed,
		ArrivalThreshold: c.Movement.ArrivalThreshold,
		Dynamic:          c.Movement.DynamicObstacles,
	}
}
