package game

import "time"

type Phase string

const (
	PhaseBetting Phase = "BETTING"
	PhaseRolling Phase = "ROLLING"
	PhaseSettled Phase = "SETTLED"
)

type Side string

const (
	SideHigh Side = "HIGH"
	SideLow  Side = "LOW"
)

func (s Side) Valid() bool {
	return s == SideHigh || s == SideLow
}

// HighThreshold is the smallest dice sum that pays the HIGH side.
const HighThreshold = 11

func SideForSum(sum int) Side {
	if sum >= HighThreshold {
		return SideHigh
	}
	return SideLow
}

type Player struct {
	ID       string
	Name     string
	ConnID   string
	Balance  int64
	StatsKey string
	JoinedAt time.Time

	seq uint64
}

type Result struct {
	RoundID int64  `json:"roundId"`
	Dice    [3]int `json:"dice"`
	Sum     int    `json:"sum"`
	Side    Side   `json:"side"`
	Seed    string `json:"seed"`
	Commit  string `json:"commit"`
	At      int64  `json:"at"`
}

type LeaderboardEntry struct {
	StatsKey string `json:"statsKey"`
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Played   int    `json:"played"`
	Net      int64  `json:"net"`
}

type PlayerView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type BetView struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Side     Side   `json:"side"`
	Amount   int64  `json:"amount"`
}

type Snapshot struct {
	RoomID      string             `json:"roomId"`
	State       Phase              `json:"state"`
	CountdownMs int64              `json:"countdownMs"`
	PhaseEndsAt int64              `json:"phaseEndsAt"`
	RoundID     int64              `json:"roundId"`
	Commit      string             `json:"commit"`
	Players     []PlayerView       `json:"players"`
	Bets        []BetView          `json:"bets"`
	LastResult  *Result            `json:"lastResult"`
	History     []Result           `json:"history"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	ServerTime  int64              `json:"serverTime"`
}

type RoomSummary struct {
	RoomID      string `json:"roomId"`
	State       Phase  `json:"state"`
	RoundID     int64  `json:"roundId"`
	PlayerCount int    `json:"playerCount"`
	CreatedAt   int64  `json:"createdAt"`
}

// Payout is the effect of settlement on one bet.
type Payout struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Side     Side   `json:"side"`
	Amount   int64  `json:"amount"`
	Won      bool   `json:"won"`
	Balance  int64  `json:"balance"`
}
