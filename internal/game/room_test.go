package game

import (
	"errors"
	"math"
	"testing"
	"time"

	"hilo-casino/internal/fairness"
)

func TestAnnScenario(t *testing.T) {
	tr := newTestRoom("lobby", 2, 3, 4)
	ann := tr.Join("conn-1", "Ann", nil)
	if ann.Balance != 1000 {
		t.Fatalf("balance = %d, want 1000", ann.Balance)
	}

	if err := tr.PlaceBet(ann.ID, SideLow, 200); err != nil {
		t.Fatalf("bet 200: %v", err)
	}
	err := tr.PlaceBet(ann.ID, SideLow, 1200)
	var capErr *BetCapError
	if !errors.As(err, &capErr) || capErr.Cap != 1000 {
		t.Fatalf("bet 1200 error = %v, want cap 1000", err)
	}
	if got := RejectReason(err); got != "Cược tối đa: 1000" {
		t.Fatalf("RejectReason = %q", got)
	}
	if err := tr.PlaceBet(ann.ID, SideLow, 500); err != nil {
		t.Fatalf("bet 500: %v", err)
	}
	snap := tr.Snapshot()
	if len(snap.Bets) != 1 || snap.Bets[0].Amount != 500 {
		t.Fatalf("expected single overwritten bet of 500, got %+v", snap.Bets)
	}

	if err := tr.playOut(); err != nil {
		t.Fatalf("play out: %v", err)
	}
	snap = tr.Snapshot()
	if snap.State != PhaseSettled {
		t.Fatalf("state = %s, want SETTLED", snap.State)
	}
	if snap.LastResult == nil || snap.LastResult.Sum != 9 || snap.LastResult.Side != SideLow {
		t.Fatalf("unexpected result: %+v", snap.LastResult)
	}
	if !fairness.Verify(snap.LastResult.Seed, snap.LastResult.Commit) {
		t.Fatal("revealed seed does not match commitment")
	}
	p, _ := tr.Player(ann.ID)
	if p.Balance != 1500 {
		t.Fatalf("balance = %d, want 1500", p.Balance)
	}
	if len(snap.Leaderboard) != 1 {
		t.Fatalf("leaderboard = %+v", snap.Leaderboard)
	}
	e := snap.Leaderboard[0]
	if e.Wins != 1 || e.Losses != 0 || e.Played != 1 || e.Net != 500 || e.StatsKey != "ann" {
		t.Fatalf("leaderboard entry = %+v", e)
	}
	if len(snap.Bets) != 0 {
		t.Fatalf("bets not cleared: %+v", snap.Bets)
	}
}

func TestSettlementSymmetricNets(t *testing.T) {
	tr := newTestRoom("lobby", 6, 6, 1)
	ann := tr.Join("c1", "Ann", nil)
	bob := tr.Join("c2", "Bob", nil)
	if err := tr.PlaceBet(ann.ID, SideHigh, 300); err != nil {
		t.Fatalf("ann bet: %v", err)
	}
	if err := tr.PlaceBet(bob.ID, SideLow, 300); err != nil {
		t.Fatalf("bob bet: %v", err)
	}
	if err := tr.playOut(); err != nil {
		t.Fatalf("play out: %v", err)
	}

	lb := tr.Leaderboard()
	if len(lb) != 2 {
		t.Fatalf("leaderboard = %+v", lb)
	}
	if lb[0].StatsKey != "ann" || lb[0].Net != 300 || lb[1].StatsKey != "bob" || lb[1].Net != -300 {
		t.Fatalf("unexpected order or nets: %+v", lb)
	}
	if lb[0].Net+lb[1].Net != 0 {
		t.Fatalf("nets should cancel out: %+v", lb)
	}
}

func TestLeaveBeforeSettlementDropsBet(t *testing.T) {
	tr := newTestRoom("lobby", 1, 1, 1)
	ann := tr.Join("c1", "Ann", nil)
	if err := tr.PlaceBet(ann.ID, SideLow, 100); err != nil {
		t.Fatalf("bet: %v", err)
	}
	if !tr.Leave(ann.ID) {
		t.Fatal("Leave() = false")
	}
	if tr.Leave(ann.ID) {
		t.Fatal("second Leave() = true")
	}
	if err := tr.playOut(); err != nil {
		t.Fatalf("play out: %v", err)
	}
	if lb := tr.Leaderboard(); len(lb) != 0 {
		t.Fatalf("leaderboard should be empty, got %+v", lb)
	}
	if err := tr.PlaceBet(ann.ID, SideLow, 10); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("bet after leave error = %v", err)
	}
}

func TestBetRejectedOutsideBetting(t *testing.T) {
	tr := newTestRoom("lobby", 1, 2, 3)
	ann := tr.Join("c1", "Ann", nil)
	if err := tr.Tick(tr.clock.Advance(18 * time.Second)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	err := tr.PlaceBet(ann.ID, SideHigh, 10)
	if !errors.Is(err, ErrBettingClosed) {
		t.Fatalf("error = %v, want ErrBettingClosed", err)
	}
	if len(tr.Snapshot().Bets) != 0 {
		t.Fatal("rejected bet mutated ledger")
	}
}

func TestLossClampsBalanceAtZero(t *testing.T) {
	tr := newTestRoom("lobby", 6, 6, 6)
	ann := tr.Join("c1", "Ann", nil)
	if err := tr.PlaceBet(ann.ID, SideLow, 1000); err != nil {
		t.Fatalf("bet: %v", err)
	}
	tr.mu.Lock()
	tr.players[ann.ID].Balance = 400
	tr.mu.Unlock()

	if err := tr.playOut(); err != nil {
		t.Fatalf("play out: %v", err)
	}
	p, _ := tr.Player(ann.ID)
	if p.Balance != 0 {
		t.Fatalf("balance = %d, want 0", p.Balance)
	}
	if lb := tr.Leaderboard(); lb[0].Net != -1000 || lb[0].Losses != 1 {
		t.Fatalf("leaderboard = %+v", lb)
	}
	if err := tr.ResetBalance(ann.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p, _ := tr.Player(ann.ID); p.Balance != 1000 {
		t.Fatalf("balance after reset = %d", p.Balance)
	}
}

func TestSettleFailureRetriesNextTick(t *testing.T) {
	tr := newTestRoom("lobby", 3)
	ann := tr.Join("c1", "Ann", nil)
	if err := tr.PlaceBet(ann.ID, SideLow, 100); err != nil {
		t.Fatalf("bet: %v", err)
	}
	if err := tr.playOut(); !errors.Is(err, fairness.ErrSequenceExhausted) {
		t.Fatalf("play out error = %v, want exhausted sequence", err)
	}
	snap := tr.Snapshot()
	if snap.State != PhaseRolling || len(snap.Bets) != 1 {
		t.Fatalf("room should stay ROLLING with its bet, got %s %+v", snap.State, snap.Bets)
	}
	if p, _ := tr.Player(ann.ID); p.Balance != 1000 {
		t.Fatalf("balance changed on failed settle: %d", p.Balance)
	}

	tr.dice.Push(1, 1, 1)
	if err := tr.Tick(tr.clock.Advance(60 * time.Millisecond)); err != nil {
		t.Fatalf("retry tick: %v", err)
	}
	if p, _ := tr.Player(ann.ID); p.Balance != 1100 {
		t.Fatalf("balance = %d, want 1100", p.Balance)
	}
}

func TestRoundLifecycleAndEvents(t *testing.T) {
	tr := newTestRoom("lobby", 4, 4, 4)
	first := tr.Snapshot()
	if first.RoundID != 1 || first.State != PhaseBetting || first.CountdownMs != 18000 {
		t.Fatalf("initial snapshot = %+v", first)
	}
	if first.Commit == "" {
		t.Fatal("commit missing from betting snapshot")
	}

	if err := tr.playOut(); err != nil {
		t.Fatalf("play out: %v", err)
	}
	kinds := tr.rec.kinds()
	want := []EventKind{EventPhaseChanged, EventSnapshot, EventPhaseChanged, EventRoundSettled, EventSnapshot}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}

	// Repeated ticks inside a phase are no-ops.
	tr.rec.reset()
	if err := tr.Tick(tr.clock.Advance(time.Second)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if n := len(tr.rec.kinds()); n != 0 {
		t.Fatalf("expected no events mid-phase, got %d", n)
	}

	if err := tr.Tick(tr.clock.Advance(5 * time.Second)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	next := tr.Snapshot()
	if next.RoundID != 2 || next.State != PhaseBetting {
		t.Fatalf("next round snapshot = %+v", next)
	}
	if next.Commit == first.Commit {
		t.Fatal("new round reused the previous commitment")
	}
	if next.History[0].Commit != first.Commit {
		t.Fatal("history should carry the first round commitment")
	}
}

func TestCountdownPublishedOncePerSecond(t *testing.T) {
	tr := newTestRoom("lobby")
	for i := 0; i < 50; i++ {
		if err := tr.Tick(tr.clock.Advance(100 * time.Millisecond)); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	// 5s elapsed: remaining crosses 18..13, each second boundary published once.
	if got := tr.rec.count(EventCountdown); got != 6 {
		t.Fatalf("countdown events = %d, want 6", got)
	}
}

func TestHistoryBounded(t *testing.T) {
	tr := newTestRoom("lobby")
	for i := 0; i < 25; i++ {
		tr.dice.Push(1, 2, 3)
		if err := tr.playOut(); err != nil {
			t.Fatalf("round %d: %v", i+1, err)
		}
		if err := tr.Tick(tr.clock.Advance(6 * time.Second)); err != nil {
			t.Fatalf("next round %d: %v", i+1, err)
		}
	}
	snap := tr.Snapshot()
	if len(snap.History) != 20 {
		t.Fatalf("history length = %d, want 20", len(snap.History))
	}
	if snap.History[0].RoundID != 25 || snap.History[19].RoundID != 6 {
		t.Fatalf("history order = %d..%d", snap.History[0].RoundID, snap.History[19].RoundID)
	}
	if snap.RoundID != 26 {
		t.Fatalf("roundId = %d, want 26", snap.RoundID)
	}
}

func TestJoinCallbackRunsBeforeSnapshot(t *testing.T) {
	tr := newTestRoom("lobby")
	var order []string
	tr.Room.opts.Publisher = PublisherFunc(func(_ string, ev Event) {
		order = append(order, string(ev.Kind()))
	})
	p := tr.Join("c1", "  Ann!!  ", func(p Player) {
		order = append(order, "welcome:"+p.Name)
	})
	if p.Name != "Ann" {
		t.Fatalf("name = %q", p.Name)
	}
	if len(order) != 2 || order[0] != "welcome:Ann" || order[1] != "ROOM" {
		t.Fatalf("order = %v", order)
	}
}

func TestChat(t *testing.T) {
	tr := newTestRoom("lobby")
	ann := tr.Join("c1", "Ann", nil)
	tr.rec.reset()
	if err := tr.Chat(ann.ID, "   "); err != nil {
		t.Fatalf("blank chat: %v", err)
	}
	if err := tr.Chat(ann.ID, " hi all "); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if tr.rec.count(EventChat) != 1 {
		t.Fatalf("chat events = %v", tr.rec.kinds())
	}
	msg := tr.rec.events[0].(ChatPosted)
	if msg.Text != "hi all" || msg.Name != "Ann" {
		t.Fatalf("chat = %+v", msg)
	}
	if err := tr.Chat("ghost", "boo"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("ghost chat error = %v", err)
	}
}

func TestIdle(t *testing.T) {
	tr := newTestRoom("lobby")
	ann := tr.Join("c1", "Ann", nil)
	now := tr.clock.Advance(time.Hour)
	if tr.Idle(now, time.Minute) {
		t.Fatal("room with players reported idle")
	}
	tr.Leave(ann.ID)
	if tr.Idle(tr.clock.Now(), time.Minute) {
		t.Fatal("room idle immediately after leave")
	}
	if !tr.Idle(tr.clock.Advance(2*time.Minute), time.Minute) {
		t.Fatal("room should be idle")
	}
}

func TestValidateBet(t *testing.T) {
	cases := []struct {
		name   string
		phase  Phase
		side   Side
		amount float64
		want   int64
		err    error
	}{
		{"ok", PhaseBetting, SideHigh, 100, 100, nil},
		{"truncates", PhaseBetting, SideLow, 12.9, 12, nil},
		{"closed", PhaseRolling, SideHigh, 100, 0, ErrBettingClosed},
		{"bad side", PhaseBetting, Side("MID"), 100, 0, ErrInvalidSide},
		{"zero", PhaseBetting, SideHigh, 0, 0, ErrInvalidAmount},
		{"negative", PhaseBetting, SideHigh, -5, 0, ErrInvalidAmount},
		{"fraction", PhaseBetting, SideHigh, 0.5, 0, ErrInvalidAmount},
		{"nan", PhaseBetting, SideHigh, math.NaN(), 0, ErrInvalidAmount},
		{"inf", PhaseBetting, SideHigh, math.Inf(1), 0, ErrInvalidAmount},
		{"over cap", PhaseBetting, SideHigh, 501, 0, ErrOverBetCap},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateBet(tc.phase, tc.side, tc.amount, 500)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("error = %v, want %v", err, tc.err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ValidateBet() = %d, %v; want %d", got, err, tc.want)
			}
		})
	}
}

func TestBetCapUsesBalanceAndMax(t *testing.T) {
	if BetCap(5000, 1000) != 1000 || BetCap(5000, 9000) != 5000 || BetCap(5000, 0) != 0 {
		t.Fatal("unexpected bet cap")
	}
}

func TestSideForSum(t *testing.T) {
	if SideForSum(10) != SideLow || SideForSum(11) != SideHigh || SideForSum(3) != SideLow || SideForSum(18) != SideHigh {
		t.Fatal("unexpected side threshold")
	}
}

func TestRejectReasons(t *testing.T) {
	if RejectReason(ErrBettingClosed) == RejectReason(ErrInvalidSide) {
		t.Fatal("reasons should differ")
	}
	if ErrorCode(&BetCapError{Cap: 5}) != "over_bet_cap" {
		t.Fatalf("code = %s", ErrorCode(&BetCapError{Cap: 5}))
	}
}
