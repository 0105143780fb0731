package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type PushConfig struct {
	Workers          int           `env:"PUSH_WORKERS" envDefault:"2"`
	QueueSize        int           `env:"PUSH_QUEUE_SIZE" envDefault:"256"`
	RetryMax         int           `env:"PUSH_RETRY_MAX" envDefault:"3"`
	RetryBase        time.Duration `env:"PUSH_RETRY_BASE" envDefault:"500ms"`
	FailureThreshold int           `env:"PUSH_FAILURE_THRESHOLD" envDefault:"5"`
	CircuitOpen      time.Duration `env:"PUSH_CIRCUIT_OPEN" envDefault:"30s"`
	DeliverTimeout   time.Duration `env:"PUSH_DELIVER_TIMEOUT" envDefault:"3s"`
	RecentLimit      int           `env:"PUSH_RECENT_LIMIT" envDefault:"100"`

	WebhookURL    string `env:"PUSH_WEBHOOK_URL"`
	WebhookSecret string `env:"PUSH_WEBHOOK_SECRET"`
	WebhookFormat string `env:"PUSH_WEBHOOK_FORMAT" envDefault:"json"`
}

func LoadPush() (PushConfig, error) {
	var cfg PushConfig
	err := env.Parse(&cfg)
	return cfg, err
}
