package server

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server's environment-driven configuration.
type Config struct {
	Addr         string  `env:"ADDR" envDefault:":8080"`
	PresetDB     string  `env:"PRESET_DB" envDefault:"presets.db"`
	CanvasWidth  float64 `env:"CANVAS_WIDTH" envDefault:"800"`
	CanvasHeight float64 `env:"CANVAS_HEIGHT" envDefault:"600"`
}

// LoadConfig parses the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return Config{}, fmt.Errorf("canvas dimensions must be positive")
	}
	return cfg, nil
}
