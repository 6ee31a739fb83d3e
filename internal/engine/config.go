package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"narrative-server/pkg/logger"
)

// Config is the campaign's tunable surface, loaded from YAML. Zero values
// fall back to DefaultConfig so partial files stay valid.
type Config struct {
	Seed        int64  `yaml:"seed"`
	Addr        string `yaml:"addr"`
	TurnDelayMs int    `yaml:"turn_delay_ms"`
	MaxRounds   int    `yaml:"max_rounds"`

	DBPath        string `yaml:"db_path"`
	ChroniclePath string `yaml:"chronicle_path"`
	ActionCatalog string `yaml:"action_catalog"`
	GoalCatalog   string `yaml:"goal_catalog"`

	World WorldConfig `yaml:"world"`
}

// WorldConfig tunes procedural world generation and the starting cast.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Rooms  int `yaml:"rooms"`
	Heroes int `yaml:"heroes"`
	Beasts int `yaml:"beasts"`
}

func DefaultConfig() Config {
	return Config{
		Seed:        time.Now().UnixNano(),
		Addr:        ":8080",
		TurnDelayMs: 500,
		MaxRounds:   0, // unbounded
		World: WorldConfig{
			Width:  32,
			Height: 24,
			Rooms:  6,
			Heroes: 2,
			Beasts: 3,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. A missing path returns
// the defaults untouched.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	logger.Log.WithField("path", path).Info("Config loaded")
	return cfg, nil
}

func (c Config) validate() error {
	if c.World.Width < 8 || c.World.Height < 8 {
		return fmt.Errorf("config: world must be at least 8x8, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.TurnDelayMs < 0 {
		return fmt.Errorf("config: turn_delay_ms must not be negative")
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("config: max_rounds must not be negative")
	}
	return nil
}

// TurnDelay is TurnDelayMs as a duration.
func (c Config) TurnDelay() time.Duration {
	return time.Duration(c.TurnDelayMs) * time.Millisecond
}
