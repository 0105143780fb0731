package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apppublic "hilo-casino/internal/app/public"
	"hilo-casino/internal/config"
	"hilo-casino/internal/game"
	"hilo-casino/internal/lobby"
	"hilo-casino/internal/logging"
	"hilo-casino/internal/redisbus"
	"hilo-casino/internal/resultpush"
	"hilo-casino/internal/spectatorgateway"
	"hilo-casino/internal/store"
	httptransport "hilo-casino/internal/transport/http"
	"hilo-casino/internal/ws"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	closer, err := logging.Init(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sinks   []resultpush.Sink
		archive apppublic.RoundArchive
		recent  apppublic.RecentRounds
		checks  = map[string]httptransport.Pinger{}
	)

	if cfg.Server.PostgresDSN != "" {
		st, err := store.New(cfg.Server.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("store init failed")
		}
		defer st.Close()
		if err := st.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		sinks = append(sinks, st)
		archive = st
		checks["postgres"] = st
	} else {
		log.Warn().Msg("POSTGRES_DSN not set; round archive disabled")
	}

	if cfg.Server.RedisAddr != "" {
		bus, err := redisbus.New(ctx, cfg.Server.RedisAddr, cfg.Server.RedisPassword, cfg.Server.RedisDB, cfg.Push.RecentLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("redis init failed")
		}
		defer bus.Close()
		sinks = append(sinks, bus)
		recent = bus
		checks["redis"] = bus
	}

	if cfg.Push.WebhookURL != "" {
		sinks = append(sinks, resultpush.NewWebhookSink(cfg.Push.WebhookURL, cfg.Push.WebhookSecret, cfg.Push.WebhookFormat, cfg.Push.DeliverTimeout))
	}

	pushMgr := resultpush.NewManager(resultpush.ConfigFrom(cfg.Push), sinks...)
	pushCtx, cancelPush := context.WithCancel(context.Background())
	pushMgr.Start(pushCtx)

	hub := ws.NewHub()
	feed := spectatorgateway.NewFeed()
	publishers := game.Publishers{hub, feed, pushMgr}
	if cfg.Log.RoomEvents {
		publishers = append(publishers, logging.RoomEvents())
	}
	reg := lobby.New(lobby.Config{
		Room: game.Options{
			Timings: game.Timings{
				BettingWindow: cfg.Game.BettingWindow,
				RollingDelay:  cfg.Game.RollingDelay,
				ResultDelay:   cfg.Game.ResultDelay,
			},
			StartingBalance: cfg.Game.StartingBalance,
			MaxBet:          cfg.Game.MaxBet,
			HistoryLimit:    cfg.Game.HistoryLimit,
			Publisher:       publishers,
		},
		TickInterval: cfg.Game.TickInterval,
	})
	reg.OnRemove(hub.DropRoom)
	reg.OnRemove(feed.DropRoom)
	if _, err := reg.GetOrCreate(game.DefaultRoomID); err != nil {
		log.Fatal().Err(err).Msg("create lobby failed")
	}
	reg.StartJanitor(ctx, time.Minute, cfg.Server.RoomIdleTTL)

	r := httptransport.NewRouter(httptransport.Deps{
		Public:    apppublic.NewService(reg, archive, recent),
		Feed:      feed,
		Rooms:     reg,
		WS:        ws.NewServer(reg, hub).HandleWS,
		Checks:    checks,
		StaticDir: cfg.Server.StaticDir,
	})
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.HTTPAddr).Strs("sinks", pushMgr.Sinks()).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
	}

	reg.Close()
	cancelPush()
	pushMgr.Wait()
	log.Info().Msg("server exited")
}
