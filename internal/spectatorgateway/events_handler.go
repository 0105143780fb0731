package spectatorgateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"hilo-casino/internal/game"
	"hilo-casino/internal/stream"

	"github.com/go-chi/chi/v5"
)

var pingInterval = 15 * time.Second

// RoomLookup finds an existing room without creating it.
type RoomLookup interface {
	Get(roomID string) (*game.Room, bool)
}

func EventsHandler(feed *Feed, rooms RoomLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.TrimSpace(chi.URLParam(r, "room_id"))
		if roomID == "" {
			roomID = strings.TrimSpace(r.URL.Query().Get("room_id"))
		}
		room, ok := rooms.Get(roomID)
		if !ok {
			metricWatchersRejected.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "room_not_found"})
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		buf := feed.Buffer(room.ID())
		ch := buf.Subscribe()
		defer buf.Unsubscribe(ch)

		metricWatchersTotal.Add(1)
		metricWatchersActive.Add(1)
		defer metricWatchersActive.Add(-1)

		stream.SetSSEHeaders(w)
		w.WriteHeader(http.StatusOK)

		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			// Fresh spectators start from the current state, not the backlog.
			initial := stream.StreamEvent{
				Event:    string(game.EventSnapshot),
				RoomID:   room.ID(),
				ServerTS: time.Now().UnixMilli(),
				Data:     room.Snapshot(),
			}
			if err := stream.WriteSSE(w, initial); err != nil {
				return
			}
		} else {
			replay := buf.ReplayAfter(lastEventID)
			metricReplayedEvents.Add(int64(len(replay)))
			for _, ev := range replay {
				if err := stream.WriteSSE(w, ev); err != nil {
					return
				}
			}
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := stream.WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				ping := stream.StreamEvent{
					Event:    "ping",
					RoomID:   room.ID(),
					ServerTS: time.Now().UnixMilli(),
					Data:     map[string]any{"ts": time.Now().UnixMilli()},
				}
				if err := stream.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
