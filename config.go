package main

import "github.com/caarlos0/env/v11"

// Config is the preview app's environment-driven configuration. Flags parsed
// in main override whatever the environment provides.
type Config struct {
	Definition   string  `env:"ANIMSTATE_DEFINITION" envDefault:"locomotion.yaml"`
	InitialState string  `env:"ANIMSTATE_STATE"`
	WindowWidth  int     `env:"ANIMSTATE_WINDOW_WIDTH" envDefault:"1280"`
	WindowHeight int     `env:"ANIMSTATE_WINDOW_HEIGHT" envDefault:"720"`
	StepFPS      float32 `env:"ANIMSTATE_STEP_FPS" envDefault:"60"`
	WatchDir     string  `env:"ANIMSTATE_WATCH_DIR" envDefault:"definitions"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
