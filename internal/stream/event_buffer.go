package stream

import (
	"strconv"
	"sync"
	"time"
)

type StreamEvent struct {
	EventID  string `json:"eventId"`
	Event    string `json:"event"`
	RoomID   string `json:"roomId"`
	ServerTS int64  `json:"serverTs"`
	Data     any    `json:"data"`

	seq int64
}

// EventBuffer keeps the most recent events of one room for replay and fans
// new ones out to watchers. Slow watchers miss events rather than block Append.
type EventBuffer struct {
	mu       sync.Mutex
	roomID   string
	nextID   int64
	max      int
	events   []StreamEvent
	watchers map[chan StreamEvent]struct{}
	closed   bool
	now      func() time.Time
}

func NewEventBuffer(roomID string, max int) *EventBuffer {
	if max <= 0 {
		max = 500
	}
	return &EventBuffer{
		roomID:   roomID,
		max:      max,
		watchers: map[chan StreamEvent]struct{}{},
		now:      time.Now,
	}
}

func (b *EventBuffer) Append(event string, data any) StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return StreamEvent{}
	}
	b.nextID++
	ev := StreamEvent{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		RoomID:   b.roomID,
		ServerTS: b.now().UnixMilli(),
		Data:     data,
		seq:      b.nextID,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
			metricStreamDropped.Add(1)
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID. An empty or
// unparseable id replays everything still buffered.
func (b *EventBuffer) ReplayAfter(lastEventID string) []StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if err != nil {
		last = 0
	}
	out := make([]StreamEvent, 0, len(b.events))
	for _, ev := range b.events {
		if ev.seq > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func (b *EventBuffer) Subscribe() chan StreamEvent {
	ch := make(chan StreamEvent, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *EventBuffer) Unsubscribe(ch chan StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

// Close ends every watcher stream. Appends after Close are ignored.
func (b *EventBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
