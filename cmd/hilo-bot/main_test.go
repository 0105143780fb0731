package main

import (
	"math/rand"
	"testing"
	"time"

	"hilo-casino/internal/config"
	"hilo-casino/internal/game"
	"hilo-casino/internal/ws"
)

func newBot(maxStake int64) *bot {
	return &bot{
		cfg: config.BotConfig{MaxStake: maxStake, Think: time.Millisecond},
		rnd: rand.New(rand.NewSource(1)),
	}
}

func TestBotBetsOncePerBettingRound(t *testing.T) {
	b := newBot(50)
	b.handle(frame{Type: "WELCOME", PlayerID: "p1", Balance: 1000})

	out := b.handle(frame{Type: "STATE", State: game.PhaseBetting, RoundID: 1})
	if len(out) != 1 || out[0].typ != ws.CmdBet {
		t.Fatalf("expected one BET, got %+v", out)
	}
	bet := out[0].body.(ws.BetCommand)
	if bet.Amount < 1 || bet.Amount > 50 {
		t.Fatalf("stake %v outside 1..50", bet.Amount)
	}
	if bet.Side != "HIGH" && bet.Side != "LOW" {
		t.Fatalf("side = %q", bet.Side)
	}
	if again := b.handle(frame{Type: "STATE", State: game.PhaseBetting, RoundID: 1}); len(again) != 0 {
		t.Fatalf("expected no second bet in round 1, got %+v", again)
	}
	if rolling := b.handle(frame{Type: "STATE", State: game.PhaseRolling, RoundID: 2}); len(rolling) != 0 {
		t.Fatalf("expected no bet while rolling, got %+v", rolling)
	}
}

func TestBotTracksBalanceAndResets(t *testing.T) {
	b := newBot(100)
	b.handle(frame{Type: "WELCOME", PlayerID: "p1", Balance: 1000})
	b.handle(frame{Type: "ROOM", Snapshot: &game.Snapshot{Players: []game.PlayerView{
		{ID: "p2", Balance: 900},
		{ID: "p1", Balance: 0},
	}}})
	if b.balance != 0 {
		t.Fatalf("balance = %d, want 0", b.balance)
	}
	out := b.handle(frame{Type: "STATE", State: game.PhaseBetting, RoundID: 3})
	if len(out) != 1 || out[0].typ != ws.CmdResetBalance {
		t.Fatalf("expected RESET_BALANCE, got %+v", out)
	}
}

func TestBotStakeNeverExceedsBalance(t *testing.T) {
	b := newBot(5000)
	b.balance = 7
	for i := 0; i < 50; i++ {
		if _, amount := b.decide(); amount < 1 || amount > 7 {
			t.Fatalf("stake %d outside 1..7", amount)
		}
	}
}
