package game

import "sort"

const LeaderboardLimit = 20

// Leaderboard aggregates settled bets per stats key. Keys are derived from
// display names, so anyone typing the same name shares an entry.
type Leaderboard struct {
	entries map[string]*LeaderboardEntry
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{entries: make(map[string]*LeaderboardEntry)}
}

// Ensure returns the entry for key, creating it if needed and refreshing its name.
func (lb *Leaderboard) Ensure(key, name string) *LeaderboardEntry {
	e, ok := lb.entries[key]
	if !ok {
		e = &LeaderboardEntry{StatsKey: key}
		lb.entries[key] = e
	}
	e.Name = name
	return e
}

func (e *LeaderboardEntry) record(won bool, amount int64) {
	e.Played++
	if won {
		e.Wins++
		e.Net += amount
		return
	}
	e.Losses++
	e.Net -= amount
}

func (lb *Leaderboard) Len() int { return len(lb.entries) }

// Snapshot orders by net, then wins, then played, all descending.
func (lb *Leaderboard) Snapshot() []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(lb.entries))
	for _, e := range lb.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Net != b.Net {
			return a.Net > b.Net
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Played != b.Played {
			return a.Played > b.Played
		}
		return a.StatsKey < b.StatsKey
	})
	if len(out) > LeaderboardLimit {
		out = out[:LeaderboardLimit]
	}
	return out
}
