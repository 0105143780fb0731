package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandlers struct {
	checks map[string]Pinger
}

func NewHealthHandlers(checks map[string]Pinger) *HealthHandlers {
	return &HealthHandlers{checks: checks}
}

// Health pings every configured backend. Any one down turns the response into a 503.
func (h *HealthHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		resp := map[string]any{"ok": true}
		status := http.StatusOK
		for _, name := range names {
			if err := h.checks[name].Ping(r.Context()); err != nil {
				resp[name] = "down"
				resp["ok"] = false
				status = http.StatusServiceUnavailable
				continue
			}
			resp[name] = "up"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
