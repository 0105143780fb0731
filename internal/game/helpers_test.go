package game

import (
	"fmt"
	"sync"
	"time"

	"hilo-casino/internal/fairness"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ string, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind())
	}
	return out
}

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type testRoom struct {
	*Room
	clock *fakeClock
	dice  *fairness.Sequence
	rec   *recorder
}

func newTestRoom(id string, dice ...int) *testRoom {
	clock := newFakeClock()
	seq := fairness.NewSequence(dice...)
	rec := &recorder{}
	n := 0
	room, err := NewRoom(id, Options{
		Clock:     clock,
		Dice:      seq,
		Publisher: rec,
		NewID: func() string {
			n++
			return fmt.Sprintf("p%d", n)
		},
	})
	if err != nil {
		panic(err)
	}
	return &testRoom{Room: room, clock: clock, dice: seq, rec: rec}
}

// playOut closes betting and settles the round.
func (tr *testRoom) playOut() error {
	if err := tr.Tick(tr.clock.Advance(18 * time.Second)); err != nil {
		return err
	}
	return tr.Tick(tr.clock.Advance(2500 * time.Millisecond))
}
