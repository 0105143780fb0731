package store

import "time"

type Round struct {
	ID        string
	RoomID    string
	RoundID   int64
	Dice      [3]int
	Sum       int
	Side      string
	Seed      string
	Commit    string
	SettledAt time.Time
	CreatedAt time.Time
	Payouts   []RoundPayout
}

type RoundPayout struct {
	PlayerID     string
	PlayerName   string
	Side         string
	Amount       int64
	Won          bool
	BalanceAfter int64
}
