package ws

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"hilo-casino/internal/fairness"
	"hilo-casino/internal/game"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/ws_v1.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource("ws_v1.schema.json", strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile("ws_v1.schema.json")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return schema
}

func validate(t *testing.T, schema *jsonschema.Schema, label string, raw []byte) {
	t.Helper()
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", label, err)
	}
	if err := schema.Validate(v); err != nil {
		t.Fatalf("schema validate %s: %v\n%s", label, err, raw)
	}
}

func TestWSProtocolSchemaClientMessages(t *testing.T) {
	schema := compileSchema(t)
	samples := []string{
		`{"type":"JOIN","roomId":"lobby","name":"Ann"}`,
		`{"type":"BET","side":"LOW","amount":500}`,
		`{"type":"CHAT","text":"hi"}`,
		`{"type":"RESET_BALANCE"}`,
		`{"type":"LIST_ROOMS"}`,
	}
	for i, s := range samples {
		validate(t, schema, "client sample "+string(rune('0'+i)), []byte(s))
	}
}

func TestWSProtocolSchemaServerFrames(t *testing.T) {
	schema := compileSchema(t)
	var events []game.Event
	room, err := game.NewRoom("lobby", game.Options{
		Dice:      fairness.NewSequence(2, 3, 4),
		Publisher: game.PublisherFunc(func(_ string, ev game.Event) { events = append(events, ev) }),
	})
	if err != nil {
		t.Fatalf("new room: %v", err)
	}
	p := room.Join("conn", "Ann", nil)
	if err := room.PlaceBet(p.ID, game.SideLow, 500); err != nil {
		t.Fatalf("bet: %v", err)
	}
	if err := room.Chat(p.ID, "good luck"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	now := time.Now()
	_ = room.Tick(now.Add(time.Second))
	_ = room.Tick(now.Add(19 * time.Second))
	_ = room.Tick(now.Add(22 * time.Second))

	seen := map[game.EventKind]bool{}
	for _, ev := range events {
		frame, err := EncodeEvent(ev)
		if err != nil {
			t.Fatalf("encode %T: %v", ev, err)
		}
		validate(t, schema, string(ev.Kind()), frame)
		seen[ev.Kind()] = true
	}
	for _, kind := range []game.EventKind{game.EventSnapshot, game.EventPhaseChanged, game.EventCountdown, game.EventRoundSettled, game.EventChat} {
		if !seen[kind] {
			t.Fatalf("no %s event produced", kind)
		}
	}

	validate(t, schema, "welcome", welcomeFrame("lobby", p))
	validate(t, schema, "error", errorFrame("over_bet_cap", game.RejectReason(&game.BetCapError{Cap: 1000})))
	validate(t, schema, "rooms", roomsFrame([]game.RoomSummary{room.Summary()}))
	validate(t, schema, "empty rooms", roomsFrame(nil))
}
