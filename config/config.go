package config

import (
	"errors"
	"fmt"
	"selfplay/utils"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Defaults for a search agent and the experiment harness.
const (
	Goroutines  = 8
	Episodes    = 150
	Cutoff      = 100
	Repetitions = 20
	Games       = 30 // Per match up
	Rows        = 3
	Cols        = 3
	InARow      = 3
)

var ErrInvalid = errors.New("invalid config")

var Experiments = []string{"strength", "parallelization", "cutoff"}

type Config struct {
	Experiment  string        `mapstructure:"EXPERIMENT"` // One of Experiments
	Goroutines  int           `mapstructure:"GOROUTINES"`
	Episodes    int           `mapstructure:"EPISODES"`
	Duration    time.Duration `mapstructure:"DURATION"`
	Cutoff      int           `mapstructure:"CUTOFF"`
	Repetitions int           `mapstructure:"REPETITIONS"`
	Noise       bool          `mapstructure:"NOISE"`
	TreeReuse   bool          `mapstructure:"TREE_REUSE"`
	Heuristic   bool          `mapstructure:"HEURISTIC"` // Line evaluation and uniform priors instead of rollouts
	Games       int           `mapstructure:"GAMES"`
	Rows        int           `mapstructure:"ROWS"`
	Cols        int           `mapstructure:"COLS"`
	InARow      int           `mapstructure:"IN_A_ROW"`
	Seed        uint64        `mapstructure:"SEED"`
	LogLevel    string        `mapstructure:"LOG_LEVEL"`
	OutputDir   string        `mapstructure:"OUTPUT_DIR"`
}

// Load reads the config file at path, if any, with MCTS_* environment
// variables taking precedence and defaults filling the rest.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("EXPERIMENT", "strength")
	v.SetDefault("GOROUTINES", Goroutines)
	v.SetDefault("EPISODES", Episodes)
	v.SetDefault("DURATION", time.Duration(0))
	v.SetDefault("CUTOFF", Cutoff)
	v.SetDefault("REPETITIONS", Repetitions)
	v.SetDefault("NOISE", false)
	v.SetDefault("TREE_REUSE", false)
	v.SetDefault("HEURISTIC", false)
	v.SetDefault("GAMES", Games)
	v.SetDefault("ROWS", Rows)
	v.SetDefault("COLS", Cols)
	v.SetDefault("IN_A_ROW", InARow)
	v.SetDefault("SEED", 0)
	v.SetDefault("LOG_LEVEL", zerolog.LevelInfoValue)
	v.SetDefault("OUTPUT_DIR", "experiments")

	v.SetEnvPrefix("MCTS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case utils.FindIndex(Experiments, c.Experiment) < 0:
		return fmt.Errorf("%w: unknown experiment %q", ErrInvalid, c.Experiment)
	case c.Goroutines < 1:
		return fmt.Errorf("%w: goroutines must be positive, got %d", ErrInvalid, c.Goroutines)
	case c.Episodes <= 0 && c.Duration <= 0:
		return fmt.Errorf("%w: need search episodes or duration", ErrInvalid)
	case c.Cutoff < 0:
		return fmt.Errorf("%w: cutoff must not be negative, got %d", ErrInvalid, c.Cutoff)
	case c.Repetitions < 1:
		return fmt.Errorf("%w: repetitions must be positive, got %d", ErrInvalid, c.Repetitions)
	case c.Games < 1:
		return fmt.Errorf("%w: games must be positive, got %d", ErrInvalid, c.Games)
	case c.Rows < 1 || c.Cols < 1:
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalid, c.Rows, c.Cols)
	case c.InARow < 1 || c.InARow > max(c.Rows, c.Cols):
		return fmt.Errorf("%w: cannot fit %d in a row on a %dx%d board", ErrInvalid, c.InARow, c.Rows, c.Cols)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
