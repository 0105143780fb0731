package game

import "time"

type EventKind string

const (
	EventPhaseChanged EventKind = "STATE"
	EventCountdown    EventKind = "COUNTDOWN"
	EventRoundSettled EventKind = "RESULT"
	EventSnapshot     EventKind = "ROOM"
	EventChat         EventKind = "CHAT"
)

// Event is one of PhaseChanged, CountdownTick, RoundSettled, SnapshotUpdated or ChatPosted.
type Event interface {
	Kind() EventKind
}

type PhaseChanged struct {
	RoomID  string
	RoundID int64
	Phase   Phase
	EndsAt  time.Time
}

type CountdownTick struct {
	RoomID    string
	RoundID   int64
	Remaining time.Duration
}

type RoundSettled struct {
	RoomID  string
	Result  Result
	Payouts []Payout
}

type SnapshotUpdated struct {
	Snapshot Snapshot
}

type ChatPosted struct {
	RoomID   string
	PlayerID string
	Name     string
	Text     string
	At       time.Time
}

func (PhaseChanged) Kind() EventKind    { return EventPhaseChanged }
func (CountdownTick) Kind() EventKind   { return EventCountdown }
func (RoundSettled) Kind() EventKind    { return EventRoundSettled }
func (SnapshotUpdated) Kind() EventKind { return EventSnapshot }
func (ChatPosted) Kind() EventKind      { return EventChat }

// Publisher receives room events while the room lock is held.
// Implementations must not block and must not call back into the room.
type Publisher interface {
	Publish(roomID string, ev Event)
}

type PublisherFunc func(roomID string, ev Event)

func (f PublisherFunc) Publish(roomID string, ev Event) { f(roomID, ev) }

// Publishers fans an event out to every member in order.
type Publishers []Publisher

func (ps Publishers) Publish(roomID string, ev Event) {
	for _, p := range ps {
		if p != nil {
			p.Publish(roomID, ev)
		}
	}
}

type discard struct{}

func (discard) Publish(string, Event) {}
