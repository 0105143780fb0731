package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type BotConfig struct {
	WSURL    string        `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	Name     string        `env:"BOT_NAME" envDefault:"bot"`
	RoomID   string        `env:"ROOM_ID" envDefault:"lobby"`
	MaxStake int64         `env:"BOT_MAX_STAKE" envDefault:"100"`
	Think    time.Duration `env:"BOT_THINK" envDefault:"1500ms"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
