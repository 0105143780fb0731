package game

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"hilo-casino/internal/fairness"

	"github.com/google/uuid"
)

type Timings struct {
	BettingWindow time.Duration
	RollingDelay  time.Duration
	ResultDelay   time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		BettingWindow: 18 * time.Second,
		RollingDelay:  2500 * time.Millisecond,
		ResultDelay:   6 * time.Second,
	}
}

type Options struct {
	Timings         Timings
	StartingBalance int64
	MaxBet          int64
	HistoryLimit    int

	Clock     Clock
	Dice      fairness.Randomizer
	Entropy   io.Reader
	Publisher Publisher
	NewID     func() string
}

func DefaultOptions() Options {
	return Options{
		Timings:         DefaultTimings(),
		StartingBalance: 1000,
		MaxBet:          5000,
		HistoryLimit:    20,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Timings.BettingWindow <= 0 {
		o.Timings.BettingWindow = def.Timings.BettingWindow
	}
	if o.Timings.RollingDelay <= 0 {
		o.Timings.RollingDelay = def.Timings.RollingDelay
	}
	if o.Timings.ResultDelay <= 0 {
		o.Timings.ResultDelay = def.Timings.ResultDelay
	}
	if o.StartingBalance <= 0 {
		o.StartingBalance = def.StartingBalance
	}
	if o.MaxBet <= 0 {
		o.MaxBet = def.MaxBet
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = def.HistoryLimit
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Dice == nil {
		o.Dice = fairness.NewCryptoRandomizer()
	}
	if o.Publisher == nil {
		o.Publisher = discard{}
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Room is one betting table. Every exported method holds mu for the whole
// mutate-then-publish sequence.
type Room struct {
	mu   sync.Mutex
	id   string
	opts Options

	phase         Phase
	roundID       int64
	bettingEndsAt time.Time
	phaseEndsAt   time.Time
	commitment    fairness.Commitment
	lastCountdown int64

	lastResult  *Result
	history     []Result
	players     map[string]*Player
	playerSeq   uint64
	bets        *BetLedger
	leaderboard *Leaderboard

	createdAt    time.Time
	lastActivity time.Time
}

func NewRoom(id string, opts Options) (*Room, error) {
	opts = opts.withDefaults()
	commitment, err := fairness.Open(opts.Entropy)
	if err != nil {
		return nil, fmt.Errorf("open round commitment: %w", err)
	}
	now := opts.Clock.Now()
	r := &Room{
		id:            SanitizeRoomID(id),
		opts:          opts,
		phase:         PhaseBetting,
		roundID:       1,
		bettingEndsAt: now.Add(opts.Timings.BettingWindow),
		commitment:    commitment,
		players:       make(map[string]*Player),
		bets:          NewBetLedger(),
		leaderboard:   NewLeaderboard(),
		createdAt:     now,
		lastActivity:  now,
	}
	r.phaseEndsAt = r.bettingEndsAt
	return r, nil
}

func (r *Room) ID() string { return r.id }

func (r *Room) CreatedAt() time.Time { return r.createdAt }

// Join registers a new player. onJoin, when set, runs under the room lock
// before the snapshot is published, so the caller can greet the player first.
func (r *Room) Join(connID, name string, onJoin func(Player)) Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Clock.Now()
	clean := SanitizeName(name)
	r.playerSeq++
	p := &Player{
		ID:       r.opts.NewID(),
		Name:     clean,
		ConnID:   connID,
		Balance:  r.opts.StartingBalance,
		StatsKey: StatsKey(clean),
		JoinedAt: now,
		seq:      r.playerSeq,
	}
	r.players[p.ID] = p
	r.lastActivity = now
	if onJoin != nil {
		onJoin(*p)
	}
	r.publishSnapshotLocked(now)
	return *p
}

// Leave removes the player and any pending bet. The round continues for everyone else.
func (r *Room) Leave(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[playerID]; !ok {
		return false
	}
	delete(r.players, playerID)
	r.bets.Remove(playerID)
	now := r.opts.Clock.Now()
	r.lastActivity = now
	r.publishSnapshotLocked(now)
	return true
}

func (r *Room) PlaceBet(playerID string, side Side, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	stake, err := ValidateBet(r.phase, side, amount, BetCap(r.opts.MaxBet, p.Balance))
	if err != nil {
		metricBetsRejected.Add(1)
		return err
	}
	r.bets.Place(PlacedBet{PlayerID: p.ID, Name: p.Name, Side: side, Amount: stake})
	metricBetsAccepted.Add(1)
	now := r.opts.Clock.Now()
	r.lastActivity = now
	r.publishSnapshotLocked(now)
	return nil
}

func (r *Room) ResetBalance(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Balance = r.opts.StartingBalance
	now := r.opts.Clock.Now()
	r.lastActivity = now
	r.publishSnapshotLocked(now)
	return nil
}

// Chat posts text to the room. Blank text is dropped.
func (r *Room) Chat(playerID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	text = SanitizeChat(text)
	if text == "" {
		return nil
	}
	now := r.opts.Clock.Now()
	r.lastActivity = now
	r.opts.Publisher.Publish(r.id, ChatPosted{
		RoomID:   r.id,
		PlayerID: p.ID,
		Name:     p.Name,
		Text:     text,
		At:       now,
	})
	return nil
}

// Tick advances the round lifecycle to now. Each transition is guarded by the
// current phase, so it fires once no matter how often Tick runs. A failed
// settlement leaves the room ROLLING and is retried on the next tick.
func (r *Room) Tick(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.phase {
	case PhaseBetting:
		if now.Before(r.bettingEndsAt) {
			r.countdownLocked(now)
			return nil
		}
		r.phase = PhaseRolling
		r.phaseEndsAt = now.Add(r.opts.Timings.RollingDelay)
		r.publishPhaseLocked()
		r.publishSnapshotLocked(now)
	case PhaseRolling:
		if now.Before(r.phaseEndsAt) {
			return nil
		}
		res, payouts, err := r.settleLocked(now.UnixMilli())
		if err != nil {
			metricSettleErrors.Add(1)
			return fmt.Errorf("settle room %s round %d: %w", r.id, r.roundID, err)
		}
		metricRoundsSettled.Add(1)
		r.phase = PhaseSettled
		r.phaseEndsAt = now.Add(r.opts.Timings.ResultDelay)
		r.publishPhaseLocked()
		r.opts.Publisher.Publish(r.id, RoundSettled{RoomID: r.id, Result: res, Payouts: payouts})
		r.publishSnapshotLocked(now)
	case PhaseSettled:
		if now.Before(r.phaseEndsAt) {
			return nil
		}
		commitment, err := fairness.Open(r.opts.Entropy)
		if err != nil {
			return fmt.Errorf("open commitment for room %s: %w", r.id, err)
		}
		r.roundID++
		r.phase = PhaseBetting
		r.commitment = commitment
		r.bettingEndsAt = now.Add(r.opts.Timings.BettingWindow)
		r.phaseEndsAt = r.bettingEndsAt
		r.lastCountdown = 0
		r.publishPhaseLocked()
		r.publishSnapshotLocked(now)
	}
	return nil
}

func (r *Room) countdownLocked(now time.Time) {
	remaining := r.bettingEndsAt.Sub(now)
	secs := int64((remaining + time.Second - 1) / time.Second)
	if secs == r.lastCountdown {
		return
	}
	r.lastCountdown = secs
	r.opts.Publisher.Publish(r.id, CountdownTick{RoomID: r.id, RoundID: r.roundID, Remaining: remaining})
}

func (r *Room) publishPhaseLocked() {
	r.opts.Publisher.Publish(r.id, PhaseChanged{
		RoomID:  r.id,
		RoundID: r.roundID,
		Phase:   r.phase,
		EndsAt:  r.phaseEndsAt,
	})
}

func (r *Room) publishSnapshotLocked(now time.Time) {
	r.opts.Publisher.Publish(r.id, SnapshotUpdated{Snapshot: r.snapshotLocked(now)})
}

func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(r.opts.Clock.Now())
}

func (r *Room) snapshotLocked(now time.Time) Snapshot {
	countdown := r.phaseEndsAt.Sub(now).Milliseconds()
	if countdown < 0 {
		countdown = 0
	}
	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].seq < players[j].seq })
	pv := make([]PlayerView, 0, len(players))
	for _, p := range players {
		pv = append(pv, PlayerView{ID: p.ID, Name: p.Name, Balance: p.Balance})
	}
	placed := r.bets.List()
	bv := make([]BetView, 0, len(placed))
	for _, b := range placed {
		bv = append(bv, BetView{PlayerID: b.PlayerID, Name: b.Name, Side: b.Side, Amount: b.Amount})
	}
	history := make([]Result, len(r.history))
	copy(history, r.history)
	var last *Result
	if r.lastResult != nil {
		cp := *r.lastResult
		last = &cp
	}
	return Snapshot{
		RoomID:      r.id,
		State:       r.phase,
		CountdownMs: countdown,
		PhaseEndsAt: r.phaseEndsAt.UnixMilli(),
		RoundID:     r.roundID,
		Commit:      r.commitment.Commit,
		Players:     pv,
		Bets:        bv,
		LastResult:  last,
		History:     history,
		Leaderboard: r.leaderboard.Snapshot(),
		ServerTime:  now.UnixMilli(),
	}
}

func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSummary{
		RoomID:      r.id,
		State:       r.phase,
		RoundID:     r.roundID,
		PlayerCount: len(r.players),
		CreatedAt:   r.createdAt.UnixMilli(),
	}
}

func (r *Room) Leaderboard() []LeaderboardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaderboard.Snapshot()
}

func (r *Room) Player(playerID string) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Idle reports whether the room has had no players and no activity for ttl.
func (r *Room) Idle(now time.Time, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0 && now.Sub(r.lastActivity) >= ttl
}
