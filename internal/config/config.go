package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/jeopardy.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	TriviaBaseURL string        `env:"TRIVIA_BASE_URL" envDefault:"https://jservice.io/api"`
	TriviaTimeout time.Duration `env:"TRIVIA_TIMEOUT" envDefault:"10s"`
	TriviaRate    float64       `env:"TRIVIA_RATE" envDefault:"5"`
	SetupBudget   time.Duration `env:"SETUP_BUDGET" envDefault:"2m"`

	CategoryPoolSize int `env:"CATEGORY_POOL_SIZE" envDefault:"100"`
	NumCategories    int `env:"NUM_CATEGORIES" envDefault:"5"`
	CluesPerCategory int `env:"CLUES_PER_CATEGORY" envDefault:"5"`

	GameTTL      time.Duration `env:"GAME_TTL" envDefault:"24h"`
	ReapSchedule string        `env:"REAP_SCHEDULE" envDefault:"@every 10m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.NumCategories < 1:
		return errors.New("NUM_CATEGORIES must be > 0")
	case c.CluesPerCategory < 1:
		return errors.New("CLUES_PER_CATEGORY must be > 0")
	case c.CategoryPoolSize < c.NumCategories:
		return fmt.Errorf("CATEGORY_POOL_SIZE (%d) must be >= NUM_CATEGORIES (%d)",
			c.CategoryPoolSize, c.NumCategories)
	case c.TriviaTimeout <= 0:
		return errors.New("TRIVIA_TIMEOUT must be > 0")
	case c.SetupBudget < c.TriviaTimeout:
		return fmt.Errorf("SETUP_BUDGET (%s) must be >= TRIVIA_TIMEOUT (%s)",
			c.SetupBudget, c.TriviaTimeout)
	case c.DBPath == "":
		return errors.New("DB_PATH cannot be empty")
	}
	return nil
}
