package public

import (
	"context"
	"errors"
	"strings"

	"hilo-casino/internal/fairness"
	"hilo-casino/internal/game"
	"hilo-casino/internal/resultpush"
	"hilo-casino/internal/store"
)

const (
	roundsDefaultLimit = 20
	roundsMaxLimit     = 100

	SourceArchive = "archive"
	SourceRecent  = "recent"
)

type RoomLookup interface {
	Get(roomID string) (*game.Room, bool)
	List() []game.RoomSummary
}

// RoundArchive is the durable round history, normally *store.Store.
type RoundArchive interface {
	ListRounds(ctx context.Context, roomID string, limit, offset int) ([]store.Round, error)
	CountRounds(ctx context.Context, roomID string) (int, error)
	GetRoundByCommit(ctx context.Context, commit string) (*store.Round, error)
}

// RecentRounds is a bounded newest-first feed, normally *redisbus.Bus.
type RecentRounds interface {
	Recent(ctx context.Context, roomID string, limit, offset int) ([]resultpush.RoundRecord, error)
}

// Service answers read-only queries over live rooms and settled rounds.
// archive and recent may be nil; Rounds prefers the archive.
type Service struct {
	rooms   RoomLookup
	archive RoundArchive
	recent  RecentRounds
}

func NewService(rooms RoomLookup, archive RoundArchive, recent RecentRounds) *Service {
	return &Service{rooms: rooms, archive: archive, recent: recent}
}

func (s *Service) Rooms() *RoomsResponse {
	items := s.rooms.List()
	if items == nil {
		items = []game.RoomSummary{}
	}
	return &RoomsResponse{Items: items}
}

func (s *Service) Room(roomID string) (*game.Snapshot, error) {
	room, err := s.lookup(roomID)
	if err != nil {
		return nil, err
	}
	snap := room.Snapshot()
	return &snap, nil
}

func (s *Service) Leaderboard(roomID string) (*LeaderboardResponse, error) {
	room, err := s.lookup(roomID)
	if err != nil {
		return nil, err
	}
	return &LeaderboardResponse{RoomID: room.ID(), Items: room.Leaderboard()}, nil
}

// Rounds pages through settled rounds of a room, newest first. The room does
// not need to be live.
func (s *Service) Rounds(ctx context.Context, roomID string, limit, offset int) (*RoundsResponse, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, ErrInvalidRequest
	}
	limit, ok := clampRoundsPage(limit, offset)
	if !ok {
		return nil, ErrInvalidRequest
	}
	roomID = game.SanitizeRoomID(roomID)
	switch {
	case s.archive != nil:
		total, err := s.archive.CountRounds(ctx, roomID)
		if err != nil {
			return nil, err
		}
		rows, err := s.archive.ListRounds(ctx, roomID, limit, offset)
		if err != nil {
			return nil, err
		}
		items := make([]RoundItem, 0, len(rows))
		for _, r := range rows {
			items = append(items, itemFromRow(r))
		}
		return &RoundsResponse{RoomID: roomID, Items: items, Total: &total, Limit: limit, Offset: offset, Source: SourceArchive}, nil
	case s.recent != nil:
		recs, err := s.recent.Recent(ctx, roomID, limit, offset)
		if err != nil {
			return nil, err
		}
		items := make([]RoundItem, 0, len(recs))
		for _, r := range recs {
			items = append(items, itemFromRecord(r))
		}
		return &RoundsResponse{RoomID: roomID, Items: items, Limit: limit, Offset: offset, Source: SourceRecent}, nil
	default:
		return nil, ErrArchiveDisabled
	}
}

// Verify recomputes the commitment for seed. When the archive knows commit,
// the matching round is attached.
func (s *Service) Verify(ctx context.Context, seed, commit string) (*VerifyResponse, error) {
	seed = strings.ToLower(strings.TrimSpace(seed))
	commit = strings.ToLower(strings.TrimSpace(commit))
	if commit == "" {
		return nil, ErrInvalidRequest
	}
	computed, err := fairness.CommitFor(seed)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	out := &VerifyResponse{
		Valid:    fairness.Verify(seed, commit),
		Seed:     seed,
		Commit:   commit,
		Computed: computed,
	}
	if s.archive == nil {
		return out, nil
	}
	row, err := s.archive.GetRoundByCommit(ctx, commit)
	if errors.Is(err, store.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	item := itemFromRow(*row)
	out.Round = &item
	return out, nil
}

func (s *Service) lookup(roomID string) (*game.Room, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, ErrInvalidRequest
	}
	room, ok := s.rooms.Get(game.SanitizeRoomID(roomID))
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func clampRoundsPage(limit, offset int) (int, bool) {
	if offset < 0 {
		return 0, false
	}
	if limit <= 0 {
		limit = roundsDefaultLimit
	}
	if limit > roundsMaxLimit {
		limit = roundsMaxLimit
	}
	return limit, true
}

func itemFromRow(r store.Round) RoundItem {
	payouts := make([]PayoutItem, 0, len(r.Payouts))
	for _, p := range r.Payouts {
		payouts = append(payouts, PayoutItem{
			PlayerID: p.PlayerID,
			Name:     p.PlayerName,
			Side:     p.Side,
			Amount:   p.Amount,
			Won:      p.Won,
			Balance:  p.BalanceAfter,
		})
	}
	return RoundItem{
		RoomID:    r.RoomID,
		RoundID:   r.RoundID,
		Dice:      r.Dice,
		Sum:       r.Sum,
		Side:      r.Side,
		Seed:      r.Seed,
		Commit:    r.Commit,
		SettledAt: r.SettledAt,
		Payouts:   payouts,
	}
}

func itemFromRecord(r resultpush.RoundRecord) RoundItem {
	payouts := make([]PayoutItem, 0, len(r.Payouts))
	for _, p := range r.Payouts {
		payouts = append(payouts, PayoutItem{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Side:     string(p.Side),
			Amount:   p.Amount,
			Won:      p.Won,
			Balance:  p.Balance,
		})
	}
	return RoundItem{
		RoomID:    r.RoomID,
		RoundID:   r.RoundID,
		Dice:      r.Dice,
		Sum:       r.Sum,
		Side:      string(r.Side),
		Seed:      r.Seed,
		Commit:    r.Commit,
		SettledAt: r.SettledAt,
		Payouts:   payouts,
	}
}
