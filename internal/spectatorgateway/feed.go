package spectatorgateway

import (
	"sync"

	"hilo-casino/internal/game"
	"hilo-casino/internal/stream"
)

const bufferSize = 500

type phaseView struct {
	RoundID     int64      `json:"roundId"`
	State       game.Phase `json:"state"`
	PhaseEndsAt int64      `json:"phaseEndsAt"`
}

type resultView struct {
	Result  game.Result   `json:"result"`
	Payouts []game.Payout `json:"payouts"`
}

type chatView struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Text     string `json:"text"`
	At       int64  `json:"at"`
}

// Feed records room events into per-room replay buffers for HTTP spectators.
// Countdown ticks are skipped; snapshots already carry the remaining time.
type Feed struct {
	mu      sync.Mutex
	buffers map[string]*stream.EventBuffer
}

func NewFeed() *Feed {
	return &Feed{buffers: map[string]*stream.EventBuffer{}}
}

func (f *Feed) Publish(roomID string, ev game.Event) {
	var data any
	switch e := ev.(type) {
	case game.SnapshotUpdated:
		data = e.Snapshot
	case game.PhaseChanged:
		data = phaseView{RoundID: e.RoundID, State: e.Phase, PhaseEndsAt: e.EndsAt.UnixMilli()}
	case game.RoundSettled:
		payouts := e.Payouts
		if payouts == nil {
			payouts = []game.Payout{}
		}
		data = resultView{Result: e.Result, Payouts: payouts}
	case game.ChatPosted:
		data = chatView{PlayerID: e.PlayerID, Name: e.Name, Text: e.Text, At: e.At.UnixMilli()}
	default:
		return
	}
	f.buffer(roomID).Append(string(ev.Kind()), data)
}

func (f *Feed) buffer(roomID string) *stream.EventBuffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf, ok := f.buffers[roomID]
	if !ok {
		buf = stream.NewEventBuffer(roomID, bufferSize)
		f.buffers[roomID] = buf
		metricFeedRooms.Set(int64(len(f.buffers)))
	}
	return buf
}

// Buffer returns the replay buffer of a room, creating it on first use.
func (f *Feed) Buffer(roomID string) *stream.EventBuffer {
	return f.buffer(roomID)
}

// DropRoom closes the buffer of a removed room, ending its spectator streams.
func (f *Feed) DropRoom(roomID string) {
	f.mu.Lock()
	buf, ok := f.buffers[roomID]
	delete(f.buffers, roomID)
	metricFeedRooms.Set(int64(len(f.buffers)))
	f.mu.Unlock()
	if ok {
		buf.Close()
	}
}
