package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	defaultRoundsLimit = 20
	maxRoundsLimit     = 100
)

// InsertRound archives a settled round and its payouts in one transaction.
// A round whose commit is already stored is skipped and reported as false.
func (s *Store) InsertRound(ctx context.Context, r Round) (bool, error) {
	if r.ID == "" {
		r.ID = roundRef(r.SettledAt)
	}
	inserted := false
	err := pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
INSERT INTO rounds (id, room_id, round_id, die_1, die_2, die_3, dice_sum, side, seed, commit_hash, settled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (commit_hash) DO NOTHING`,
			r.ID, r.RoomID, r.RoundID, r.Dice[0], r.Dice[1], r.Dice[2], r.Sum, r.Side, r.Seed, r.Commit, r.SettledAt)
		if err != nil {
			return fmt.Errorf("insert round: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		inserted = true
		if len(r.Payouts) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, p := range r.Payouts {
			batch.Queue(`
INSERT INTO round_payouts (round_ref, player_id, player_name, side, amount, won, balance_after)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				r.ID, p.PlayerID, p.PlayerName, p.Side, p.Amount, p.Won, p.BalanceAfter)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert payouts: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// ListRounds returns a room's archived rounds, newest first.
func (s *Store) ListRounds(ctx context.Context, roomID string, limit, offset int) ([]Round, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := s.Pool.Query(ctx, `
SELECT id, room_id, round_id, die_1, die_2, die_3, dice_sum, side, seed, commit_hash, settled_at, created_at
FROM rounds
WHERE room_id = $1
ORDER BY settled_at DESC, round_id DESC
LIMIT $2 OFFSET $3`, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanRound)
	if err != nil {
		return nil, err
	}
	if err := s.attachPayouts(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountRounds(ctx context.Context, roomID string) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM rounds WHERE room_id = $1`, roomID).Scan(&n)
	return n, err
}

func (s *Store) GetRoundByCommit(ctx context.Context, commit string) (*Round, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT id, room_id, round_id, die_1, die_2, die_3, dice_sum, side, seed, commit_hash, settled_at, created_at
FROM rounds
WHERE commit_hash = $1`, commit)
	if err != nil {
		return nil, err
	}
	r, err := pgx.CollectExactlyOneRow(rows, scanRound)
	if err != nil {
		return nil, mapNotFound(err)
	}
	out := []Round{r}
	if err := s.attachPayouts(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *Store) attachPayouts(ctx context.Context, rounds []Round) error {
	if len(rounds) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rounds))
	index := make(map[string]int, len(rounds))
	for i, r := range rounds {
		ids = append(ids, r.ID)
		index[r.ID] = i
		rounds[i].Payouts = []RoundPayout{}
	}
	rows, err := s.Pool.Query(ctx, `
SELECT round_ref, player_id, player_name, side, amount, won, balance_after
FROM round_payouts
WHERE round_ref = ANY($1)
ORDER BY round_ref, player_name, player_id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		var p RoundPayout
		if err := rows.Scan(&ref, &p.PlayerID, &p.PlayerName, &p.Side, &p.Amount, &p.Won, &p.BalanceAfter); err != nil {
			return err
		}
		i := index[ref]
		rounds[i].Payouts = append(rounds[i].Payouts, p)
	}
	return rows.Err()
}

func scanRound(row pgx.CollectableRow) (Round, error) {
	var r Round
	var d1, d2, d3, sum int16
	err := row.Scan(&r.ID, &r.RoomID, &r.RoundID, &d1, &d2, &d3, &sum, &r.Side, &r.Seed, &r.Commit, &r.SettledAt, &r.CreatedAt)
	r.Dice = [3]int{int(d1), int(d2), int(d3)}
	r.Sum = int(sum)
	return r, err
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultRoundsLimit
	}
	if limit > maxRoundsLimit {
		limit = maxRoundsLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
