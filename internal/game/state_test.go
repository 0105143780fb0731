package game

import (
	"strings"
	"testing"
)

func TestSanitizeRoomID(t *testing.T) {
	cases := map[string]string{
		"":                               "lobby",
		"VIP room!":                      "VIProom",
		"a.b_c-d":                        "a.b_c-d",
		"phòng":                          "phng",
		"@@@":                            "lobby",
		strings.Repeat("x", 40):          strings.Repeat("x", 24),
		"abcdefghijklmnopqrstuvwxyz0123": "abcdefghijklmnopqrstuvwx",
	}
	for in, want := range cases {
		if got := SanitizeRoomID(in); got != want {
			t.Fatalf("SanitizeRoomID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"":                      "Player",
		"   ":                   "Player",
		"<script>":              "script",
		"Nguyễn Văn A":          "Nguyễn Văn A",
		strings.Repeat("é", 30): strings.Repeat("é", 20),
		"  Ann  ":               "Ann",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeChat(t *testing.T) {
	long := strings.Repeat("a", 200)
	if got := SanitizeChat(long); len(got) != 120 {
		t.Fatalf("chat length = %d", len(got))
	}
	if SanitizeChat("  \t ") != "" {
		t.Fatal("blank chat should be empty")
	}
}

func TestBetLedger(t *testing.T) {
	l := NewBetLedger()
	l.Place(PlacedBet{PlayerID: "a", Side: SideHigh, Amount: 10})
	l.Place(PlacedBet{PlayerID: "b", Side: SideLow, Amount: 20})
	if !l.Place(PlacedBet{PlayerID: "a", Side: SideLow, Amount: 30}) {
		t.Fatal("second bet should replace the first")
	}
	list := l.List()
	if len(list) != 2 || list[0].PlayerID != "a" || list[0].Amount != 30 || list[1].PlayerID != "b" {
		t.Fatalf("list = %+v", list)
	}
	if !l.Remove("b") || l.Remove("b") {
		t.Fatal("unexpected remove result")
	}
	l.Clear()
	if l.Len() != 0 {
		t.Fatalf("len = %d after clear", l.Len())
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	lb := NewLeaderboard()
	lb.Ensure("a", "A").record(true, 100)
	lb.Ensure("b", "B").record(true, 100)
	lb.Ensure("b", "B").record(false, 0)
	lb.Ensure("c", "C").record(true, 50)
	lb.Ensure("c", "C").record(true, 50)
	lb.Ensure("d", "D").record(false, 10)

	got := lb.Snapshot()
	order := []string{got[0].StatsKey, got[1].StatsKey, got[2].StatsKey, got[3].StatsKey}
	// a, b, c all net 100: c has 2 wins; b and a tie on wins, b played more.
	want := []string{"c", "b", "a", "d"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	lb.Ensure("a", "a-renamed")
	if lb.Snapshot()[2].Name != "a-renamed" {
		t.Fatal("Ensure should refresh the display name")
	}
}

func TestLeaderboardTruncates(t *testing.T) {
	lb := NewLeaderboard()
	for i := 0; i < 30; i++ {
		lb.Ensure(string(rune('a'+i)), "x").record(true, int64(i))
	}
	if got := lb.Snapshot(); len(got) != LeaderboardLimit || got[0].Net != 29 {
		t.Fatalf("snapshot len=%d top=%+v", len(got), got[0])
	}
}
