package game

import "fmt"

const DiceCount = 3

// settleLocked rolls the dice and applies every outstanding bet. The dice are
// drawn before anything is mutated, so a randomizer error leaves the room untouched.
func (r *Room) settleLocked(at int64) (Result, []Payout, error) {
	var dice [DiceCount]int
	sum := 0
	for i := range dice {
		v, err := r.opts.Dice.UniformInt(1, 6)
		if err != nil {
			return Result{}, nil, fmt.Errorf("roll die %d: %w", i+1, err)
		}
		dice[i] = v
		sum += v
	}
	side := SideForSum(sum)

	payouts := make([]Payout, 0, r.bets.Len())
	for _, bet := range r.bets.List() {
		p, ok := r.players[bet.PlayerID]
		if !ok {
			continue
		}
		won := bet.Side == side
		if won {
			p.Balance += bet.Amount
		} else {
			p.Balance -= bet.Amount
			if p.Balance < 0 {
				p.Balance = 0
			}
		}
		r.leaderboard.Ensure(p.StatsKey, p.Name).record(won, bet.Amount)
		payouts = append(payouts, Payout{
			PlayerID: p.ID,
			Name:     p.Name,
			Side:     bet.Side,
			Amount:   bet.Amount,
			Won:      won,
			Balance:  p.Balance,
		})
	}

	res := Result{
		RoundID: r.roundID,
		Dice:    dice,
		Sum:     sum,
		Side:    side,
		Seed:    r.commitment.Reveal(),
		Commit:  r.commitment.Commit,
		At:      at,
	}
	r.lastResult = &res
	r.history = append([]Result{res}, r.history...)
	if len(r.history) > r.opts.HistoryLimit {
		r.history = r.history[:r.opts.HistoryLimit]
	}
	r.bets.Clear()
	return res, payouts, nil
}
