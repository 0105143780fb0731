package config

import "github.com/caarlos0/env/v11"

// LogConfig drives the zerolog setup of both binaries and the request logger
// mounted on the HTTP API.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`

	// Service tags every line, so server and bot output can share a file.
	Service string `env:"LOG_SERVICE" envDefault:"hilo-server"`
	// RequestLevel is the slog level of per-request API logs; "warn" mutes them.
	RequestLevel string `env:"LOG_REQUEST_LEVEL" envDefault:"info"`
	// RoomEvents enables debug lines for every published room event.
	RoomEvents bool `env:"LOG_ROOM_EVENTS" envDefault:"false"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
