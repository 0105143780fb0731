package game

import "sort"

type PlacedBet struct {
	PlayerID string
	Name     string
	Side     Side
	Amount   int64

	seq uint64
}

// BetLedger holds at most one bet per player for the current round.
type BetLedger struct {
	bets map[string]PlacedBet
	seq  uint64
}

func NewBetLedger() *BetLedger {
	return &BetLedger{bets: make(map[string]PlacedBet)}
}

// Place stores b, replacing any earlier bet by the same player. A replaced
// bet keeps its original position in List.
func (l *BetLedger) Place(b PlacedBet) (replaced bool) {
	if prev, ok := l.bets[b.PlayerID]; ok {
		b.seq = prev.seq
		l.bets[b.PlayerID] = b
		return true
	}
	l.seq++
	b.seq = l.seq
	l.bets[b.PlayerID] = b
	return false
}

func (l *BetLedger) Get(playerID string) (PlacedBet, bool) {
	b, ok := l.bets[playerID]
	return b, ok
}

func (l *BetLedger) Remove(playerID string) bool {
	if _, ok := l.bets[playerID]; !ok {
		return false
	}
	delete(l.bets, playerID)
	return true
}

func (l *BetLedger) Len() int { return len(l.bets) }

// List returns bets in placement order.
func (l *BetLedger) List() []PlacedBet {
	out := make([]PlacedBet, 0, len(l.bets))
	for _, b := range l.bets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (l *BetLedger) Clear() {
	clear(l.bets)
}
