// Package config loads game settings from SNAKE_* environment variables,
// then lets command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"grid-snake/ai"
	"grid-snake/game"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Width         int           `env:"SNAKE_WIDTH"          envDefault:"25"`
	Height        int           `env:"SNAKE_HEIGHT"         envDefault:"20"`
	CellSize      int           `env:"SNAKE_CELL_SIZE"      envDefault:"20"`
	InitialLength int           `env:"SNAKE_INITIAL_LENGTH" envDefault:"3"`
	Direction     string        `env:"SNAKE_DIRECTION"      envDefault:"up"`
	Boundary      string        `env:"SNAKE_BOUNDARY"       envDefault:"wrap"`
	Tick          time.Duration `env:"SNAKE_TICK"           envDefault:"250ms"`
	SpeedUpStep   time.Duration `env:"SNAKE_SPEEDUP_STEP"   envDefault:"0s"`
	SpeedUpEvery  int           `env:"SNAKE_SPEEDUP_EVERY"  envDefault:"5"`
	MinTick       time.Duration `env:"SNAKE_MIN_TICK"       envDefault:"80ms"`
	Seed          uint64        `env:"SNAKE_SEED"`
	Autopilot     bool          `env:"SNAKE_AUTOPILOT"`
	Pilot         string        `env:"SNAKE_PILOT"          envDefault:"greedy"`
	QTableFile    string        `env:"SNAKE_QTABLE"         envDefault:"data/qtable.json"`
	StatsFile     string        `env:"SNAKE_STATS_FILE"     envDefault:"data/stats.json"`
	LogLevel      string        `env:"SNAKE_LOG_LEVEL"      envDefault:"info"`
	LogFile       string        `env:"SNAKE_LOG_FILE"`
	Headless      bool          `env:"SNAKE_HEADLESS"`
	Games         int           `env:"SNAKE_GAMES"          envDefault:"100"`
	Workers       int           `env:"SNAKE_WORKERS"        envDefault:"4"`
	MaxSteps      int           `env:"SNAKE_MAX_STEPS"      envDefault:"5000"`
}

// Load parses the environment, then args (without the program name).
func Load(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("snake", flag.ContinueOnError)
	fs.IntVar(&cfg.Width, "width", cfg.Width, "Grid width in cells")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "Grid height in cells")
	fs.IntVar(&cfg.CellSize, "cell", cfg.CellSize, "Cell size in pixels")
	fs.IntVar(&cfg.InitialLength, "length", cfg.InitialLength, "Initial snake length")
	fs.StringVar(&cfg.Direction, "direction", cfg.Direction, "Initial heading (up|right|down|left)")
	fs.StringVar(&cfg.Boundary, "boundary", cfg.Boundary, "Edge behaviour (wrap|walls)")
	fs.DurationVar(&cfg.Tick, "tick", cfg.Tick, "Time between snake moves")
	fs.DurationVar(&cfg.SpeedUpStep, "speedup", cfg.SpeedUpStep, "Tick reduction per speed-up (0 disables)")
	fs.IntVar(&cfg.SpeedUpEvery, "speedup-every", cfg.SpeedUpEvery, "Points between speed-ups")
	fs.DurationVar(&cfg.MinTick, "min-tick", cfg.MinTick, "Fastest tick interval")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 = time based)")
	fs.BoolVar(&cfg.Autopilot, "autopilot", cfg.Autopilot, "Start with the autopilot steering")
	fs.StringVar(&cfg.Pilot, "pilot", cfg.Pilot, "Autopilot kind (greedy|q)")
	fs.StringVar(&cfg.QTableFile, "qtable", cfg.QTableFile, "Q-table file for the q pilot (empty = in memory)")
	fs.StringVar(&cfg.StatsFile, "stats", cfg.StatsFile, "Score history file (empty = in memory)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write logs to this rotating file")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Play autopilot rounds without a window")
	fs.IntVar(&cfg.Games, "games", cfg.Games, "Rounds to play in headless mode")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent rounds in headless mode")
	fs.IntVar(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, "Step cap per headless round")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.GameOptions(); err != nil {
		return err
	}
	if c.CellSize < 4 {
		return fmt.Errorf("%w: cell size %d", ErrInvalidConfig, c.CellSize)
	}
	if c.Tick <= 0 || c.MinTick <= 0 {
		return fmt.Errorf("%w: tick intervals must be positive", ErrInvalidConfig)
	}
	if c.SpeedUpStep < 0 || c.SpeedUpEvery < 0 {
		return fmt.Errorf("%w: negative speed-up", ErrInvalidConfig)
	}
	if !ai.ValidKind(c.Pilot) {
		return fmt.Errorf("%w: pilot %q", ErrInvalidConfig, c.Pilot)
	}
	if c.Headless && (c.Games < 1 || c.Workers < 1 || c.MaxSteps < 1) {
		return fmt.Errorf("%w: headless runs need games, workers and max-steps above zero", ErrInvalidConfig)
	}
	return nil
}

// GameOptions converts the settings into game options and checks them.
func (c Config) GameOptions() (game.Options, error) {
	dir, ok := game.ParseDirection(c.Direction)
	if !ok {
		return game.Options{}, fmt.Errorf("%w: direction %q", ErrInvalidConfig, c.Direction)
	}
	boundary, ok := game.ParseBoundary(c.Boundary)
	if !ok {
		return game.Options{}, fmt.Errorf("%w: boundary %q", ErrInvalidConfig, c.Boundary)
	}
	opts := game.Options{
		Width:         c.Width,
		Height:        c.Height,
		InitialLength: c.InitialLength,
		Direction:     dir,
		Boundary:      boundary,
	}
	if err := opts.Validate(); err != nil {
		return game.Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return opts, nil
}

func (c Config) Pace() game.Pace {
	return game.Pace{
		Base:  c.Tick,
		Step:  c.SpeedUpStep,
		Every: c.SpeedUpEvery,
		Min:   min(c.MinTick, c.Tick),
	}
}
