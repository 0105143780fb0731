package public

import (
	"time"

	"hilo-casino/internal/game"
)

type RoomsResponse struct {
	Items []game.RoomSummary `json:"items"`
}

type LeaderboardResponse struct {
	RoomID string                  `json:"roomId"`
	Items  []game.LeaderboardEntry `json:"items"`
}

type RoundsResponse struct {
	RoomID string      `json:"roomId"`
	Items  []RoundItem `json:"items"`
	Total  *int        `json:"total,omitempty"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Source string      `json:"source"`
}

type RoundItem struct {
	RoomID    string       `json:"roomId"`
	RoundID   int64        `json:"roundId"`
	Dice      [3]int       `json:"dice"`
	Sum       int          `json:"sum"`
	Side      string       `json:"side"`
	Seed      string       `json:"seed"`
	Commit    string       `json:"commit"`
	SettledAt time.Time    `json:"settledAt"`
	Payouts   []PayoutItem `json:"payouts"`
}

type PayoutItem struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Side     string `json:"side"`
	Amount   int64  `json:"amount"`
	Won      bool   `json:"won"`
	Balance  int64  `json:"balance"`
}

type VerifyResponse struct {
	Valid    bool       `json:"valid"`
	Seed     string     `json:"seed"`
	Commit   string     `json:"commit"`
	Computed string     `json:"computed"`
	Round    *RoundItem `json:"round,omitempty"`
}
