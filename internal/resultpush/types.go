package resultpush

import (
	"context"
	"time"

	"hilo-casino/internal/config"
	"hilo-casino/internal/game"
)

// RoundRecord is the archived form of one settled round.
type RoundRecord struct {
	RoomID    string        `json:"roomId"`
	RoundID   int64         `json:"roundId"`
	Dice      [3]int        `json:"dice"`
	Sum       int           `json:"sum"`
	Side      game.Side     `json:"side"`
	Seed      string        `json:"seed"`
	Commit    string        `json:"commit"`
	SettledAt time.Time     `json:"settledAt"`
	Payouts   []game.Payout `json:"payouts"`
}

func RecordFromEvent(ev game.RoundSettled) RoundRecord {
	payouts := ev.Payouts
	if payouts == nil {
		payouts = []game.Payout{}
	}
	return RoundRecord{
		RoomID:    ev.RoomID,
		RoundID:   ev.Result.RoundID,
		Dice:      ev.Result.Dice,
		Sum:       ev.Result.Sum,
		Side:      ev.Result.Side,
		Seed:      ev.Result.Seed,
		Commit:    ev.Result.Commit,
		SettledAt: time.UnixMilli(ev.Result.At).UTC(),
		Payouts:   payouts,
	}
}

// Sink receives settled rounds outside the room lock.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, rec RoundRecord) error
}

type Config struct {
	Workers          int
	QueueSize        int
	RetryMax         int
	RetryBase        time.Duration
	FailureThreshold int
	CircuitOpen      time.Duration
	DeliverTimeout   time.Duration
}

func ConfigFrom(cfg config.PushConfig) Config {
	return Config{
		Workers:          cfg.Workers,
		QueueSize:        cfg.QueueSize,
		RetryMax:         cfg.RetryMax,
		RetryBase:        cfg.RetryBase,
		FailureThreshold: cfg.FailureThreshold,
		CircuitOpen:      cfg.CircuitOpen,
		DeliverTimeout:   cfg.DeliverTimeout,
	}
}

type pushJob struct {
	Sink    string
	Record  RoundRecord
	Attempt int
}
