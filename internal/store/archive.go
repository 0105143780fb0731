package store

import (
	"context"

	"hilo-casino/internal/resultpush"

	"github.com/rs/zerolog/log"
)

// Name and Deliver let the store receive settled rounds from resultpush.
func (s *Store) Name() string { return "postgres" }

func (s *Store) Deliver(ctx context.Context, rec resultpush.RoundRecord) error {
	r := Round{
		RoomID:    rec.RoomID,
		RoundID:   rec.RoundID,
		Dice:      rec.Dice,
		Sum:       rec.Sum,
		Side:      string(rec.Side),
		Seed:      rec.Seed,
		Commit:    rec.Commit,
		SettledAt: rec.SettledAt,
		Payouts:   make([]RoundPayout, 0, len(rec.Payouts)),
	}
	for _, p := range rec.Payouts {
		r.Payouts = append(r.Payouts, RoundPayout{
			PlayerID:     p.PlayerID,
			PlayerName:   p.Name,
			Side:         string(p.Side),
			Amount:       p.Amount,
			Won:          p.Won,
			BalanceAfter: p.Balance,
		})
	}
	inserted, err := s.InsertRound(ctx, r)
	if err != nil {
		return err
	}
	if !inserted {
		log.Debug().Str("room_id", rec.RoomID).Int64("round_id", rec.RoundID).Msg("round_archive_duplicate")
	}
	return nil
}
