package resultpush

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWebhookSinkPostsSignedRecord(t *testing.T) {
	var gotSig string
	var got RoundRecord
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Hilo-Signature")
		raw, _ = io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "s3cret", "", time.Second)
	rec := RecordFromEvent(settledEvent(4))
	if err := sink.Deliver(context.Background(), rec); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if got.RoundID != 4 || got.RoomID != "lobby" {
		t.Fatalf("posted record = %+v", got)
	}
	if gotSig != Sign("s3cret", raw) {
		t.Fatalf("signature mismatch: %s", gotSig)
	}
}

func TestWebhookSinkDiscordFormat(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Hilo-Signature") != "" {
			t.Errorf("unsigned sink sent a signature")
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "", "Discord", time.Second)
	if err := sink.Deliver(context.Background(), RecordFromEvent(settledEvent(2))); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	embeds, ok := body["embeds"].([]any)
	if !ok || len(embeds) != 1 {
		t.Fatalf("payload = %v", body)
	}
	first := embeds[0].(map[string]any)
	if !strings.Contains(first["title"].(string), "round #2") || !strings.Contains(first["description"].(string), "**9**") {
		t.Fatalf("embed = %v", first)
	}
}

func TestWebhookSinkNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "", "json", time.Second)
	err := sink.Deliver(context.Background(), RecordFromEvent(settledEvent(1)))
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("Deliver() error = %v, want status 502", err)
	}
}
