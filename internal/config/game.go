package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type GameConfig struct {
	BettingWindow   time.Duration `env:"BETTING_WINDOW" envDefault:"18s"`
	RollingDelay    time.Duration `env:"ROLLING_DELAY" envDefault:"2500ms"`
	ResultDelay     time.Duration `env:"RESULT_DELAY" envDefault:"6s"`
	TickInterval    time.Duration `env:"TICK_INTERVAL" envDefault:"60ms"`
	StartingBalance int64         `env:"STARTING_BALANCE" envDefault:"1000"`
	MaxBet          int64         `env:"MAX_BET" envDefault:"5000"`
	HistoryLimit    int           `env:"HISTORY_LIMIT" envDefault:"20"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
