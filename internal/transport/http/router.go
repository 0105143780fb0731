package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	apppublic "hilo-casino/internal/app/public"
	"hilo-casino/internal/mcpserver"
	"hilo-casino/internal/spectatorgateway"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Deps struct {
	Public    *apppublic.Service
	Feed      *spectatorgateway.Feed
	Rooms     spectatorgateway.RoomLookup
	WS        http.HandlerFunc
	Checks    map[string]Pinger
	StaticDir string
}

func NewRouter(d Deps) *chi.Mux {
	mcpSrv := mcpserver.New(d.Public)
	publicHandlers := NewPublicHandlers(d.Public)
	health := NewHealthHandlers(d.Checks)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", health.Health())
	r.Get("/ws", d.WS)
	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/public/rooms", publicHandlers.Rooms())
		r.Get("/public/rooms/{room_id}", publicHandlers.Room())
		r.Get("/public/rooms/{room_id}/leaderboard", publicHandlers.Leaderboard())
		r.Get("/public/rooms/{room_id}/rounds", publicHandlers.Rounds())
		r.Get("/public/rooms/{room_id}/events", spectatorgateway.EventsHandler(d.Feed, d.Rooms))
		r.Get("/public/verify", publicHandlers.Verify())

		r.Route("/debug", func(r chi.Router) {
			r.Use(BodyCaptureMiddleware(4096))
			r.Get("/vars", expvar.Handler().ServeHTTP)
		})
	})

	staticDir := d.StaticDir
	if staticDir == "" {
		log.Warn().Msg("static directory not configured; skipping catch-all static route")
	} else if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	} else {
		log.Warn().Str("path", staticDir).Msg("static directory not found; skipping catch-all static route")
	}
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
