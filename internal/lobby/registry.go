package lobby

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"hilo-casino/internal/game"

	"github.com/rs/zerolog/log"
)

const (
	defaultTickInterval = 60 * time.Millisecond
	maxListedRooms      = 50
)

var ErrClosed = errors.New("registry_closed")

type Config struct {
	Room         game.Options
	TickInterval time.Duration
}

type roomEntry struct {
	room *game.Room
	stop context.CancelFunc
	done chan struct{}

	// failedRound is the round whose settlement failure was last logged.
	// Only the entry's own tick goroutine touches it.
	failedRound int64
}

// Registry owns every live room and the goroutine ticking each one.
type Registry struct {
	cfg   Config
	clock game.Clock

	mu       sync.Mutex
	rooms    map[string]*roomEntry
	closed   bool
	onRemove []func(roomID string)
}

func New(cfg Config) *Registry {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	clock := cfg.Room.Clock
	if clock == nil {
		clock = game.SystemClock{}
	}
	return &Registry{
		cfg:   cfg,
		clock: clock,
		rooms: map[string]*roomEntry{},
	}
}

// OnRemove registers fn to run when a room is reaped. fn runs with the
// registry lock held and must not call back into the Registry.
func (r *Registry) OnRemove(fn func(roomID string)) {
	r.mu.Lock()
	r.onRemove = append(r.onRemove, fn)
	r.mu.Unlock()
}

func (r *Registry) GetOrCreate(roomID string) (*game.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(roomID)
}

// Join resolves the room and adds the player while holding the registry
// lock, so the room cannot be reaped between lookup and join.
func (r *Registry) Join(roomID, connID, name string, onJoin func(*game.Room, game.Player)) (*game.Room, game.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, err := r.getOrCreateLocked(roomID)
	if err != nil {
		return nil, game.Player{}, err
	}
	p := room.Join(connID, name, func(p game.Player) {
		if onJoin != nil {
			onJoin(room, p)
		}
	})
	return room, p, nil
}

func (r *Registry) getOrCreateLocked(roomID string) (*game.Room, error) {
	if r.closed {
		return nil, ErrClosed
	}
	id := game.SanitizeRoomID(roomID)
	if e, ok := r.rooms[id]; ok {
		return e.room, nil
	}
	room, err := game.NewRoom(id, r.cfg.Room)
	if err != nil {
		return nil, fmt.Errorf("create room %s: %w", id, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &roomEntry{room: room, stop: cancel, done: make(chan struct{})}
	r.rooms[id] = e
	metricRoomsActive.Set(int64(len(r.rooms)))
	go r.run(ctx, e)
	log.Info().Str("room_id", id).Msg("room_created")
	return room, nil
}

func (r *Registry) Get(roomID string) (*game.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rooms[game.SanitizeRoomID(roomID)]
	if !ok {
		return nil, false
	}
	return e.room, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// List returns up to 50 rooms, busiest first, then newest.
func (r *Registry) List() []game.RoomSummary {
	r.mu.Lock()
	rooms := make([]*game.Room, 0, len(r.rooms))
	for _, e := range r.rooms {
		rooms = append(rooms, e.room)
	}
	r.mu.Unlock()

	out := make([]game.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PlayerCount != b.PlayerCount {
			return a.PlayerCount > b.PlayerCount
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return a.RoomID < b.RoomID
	})
	if len(out) > maxListedRooms {
		out = out[:maxListedRooms]
	}
	return out
}

func (r *Registry) run(ctx context.Context, e *roomEntry) {
	defer close(e.done)
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(e)
		}
	}
}

func (r *Registry) tick(e *roomEntry) {
	room := e.room
	defer func() {
		if rec := recover(); rec != nil {
			metricTickPanics.Add(1)
			log.Error().Str("room_id", room.ID()).Interface("panic", rec).Msg("room_tick_panic")
		}
	}()
	err := room.Tick(r.clock.Now())
	if err == nil {
		return
	}
	// A stuck settlement fails on every tick until it succeeds; report it once per round.
	round := room.Summary().RoundID
	if round == e.failedRound {
		return
	}
	e.failedRound = round
	log.Error().Err(err).Str("room_id", room.ID()).Int64("round_id", round).Msg("room_tick_failed")
}

// StartJanitor periodically reaps rooms that have been empty for ttl.
// A non-positive ttl disables reaping.
func (r *Registry) StartJanitor(ctx context.Context, interval, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Reap(r.clock.Now(), ttl)
			}
		}
	}()
}

// Reap stops and removes idle rooms. The default lobby is kept. The remove
// hooks run before the registry lock is released, so a JOIN for the same id
// only recreates the room once its old hub and feed state are gone.
func (r *Registry) Reap(now time.Time, ttl time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, e := range r.rooms {
		if id == game.DefaultRoomID || !e.room.Idle(now, ttl) {
			continue
		}
		delete(r.rooms, id)
		e.stop()
		<-e.done
		for _, fn := range r.onRemove {
			fn(id)
		}
		ids = append(ids, id)
		log.Info().Str("room_id", id).Msg("room_reaped")
	}
	metricRoomsActive.Set(int64(len(r.rooms)))
	sort.Strings(ids)
	return ids
}

// Close stops every room loop. Further lookups that would create a room fail.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := make([]*roomEntry, 0, len(r.rooms))
	for _, e := range r.rooms {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.stop()
		<-e.done
	}
}
