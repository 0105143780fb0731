package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hilo-casino/internal/config"
	"hilo-casino/internal/game"
	"hilo-casino/internal/logging"
	"hilo-casino/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type frame struct {
	Type     string         `json:"type"`
	PlayerID string         `json:"playerId"`
	Balance  int64          `json:"balance"`
	State    game.Phase     `json:"state"`
	RoundID  int64          `json:"roundId"`
	Snapshot *game.Snapshot `json:"snapshot"`
	Result   *game.Result   `json:"result"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
}

type bot struct {
	cfg      config.BotConfig
	rnd      *rand.Rand
	playerID string
	balance  int64
	betRound int64
}

func main() {
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if _, set := os.LookupEnv("LOG_SERVICE"); !set {
		logCfg.Service = "hilo-bot"
	}
	closer, err := logging.Init(logCfg)
	if err != nil {
		panic(err)
	}
	defer closer.Close()
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.WSURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WSURL).Msg("dial failed")
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	b := &bot{cfg: cfg, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
	if err := send(conn, ws.CmdJoin, ws.JoinCommand{RoomID: cfg.RoomID, Name: cfg.Name}); err != nil {
		log.Fatal().Err(err).Msg("join failed")
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Msg("bot_disconnected")
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		for _, out := range b.handle(f) {
			if out.delay > 0 {
				time.Sleep(out.delay)
			}
			if err := send(conn, out.typ, out.body); err != nil {
				log.Warn().Err(err).Msg("bot_send_failed")
				return
			}
		}
	}
}

type outbound struct {
	typ   ws.CommandType
	body  any
	delay time.Duration
}

// handle updates the bot's view from one server frame and returns the
// commands to send in response.
func (b *bot) handle(f frame) []outbound {
	switch f.Type {
	case "WELCOME":
		b.playerID = f.PlayerID
		b.balance = f.Balance
		log.Info().Str("player_id", f.PlayerID).Int64("balance", f.Balance).Msg("bot_joined")
	case "ROOM":
		if f.Snapshot == nil {
			return nil
		}
		for _, p := range f.Snapshot.Players {
			if p.ID == b.playerID {
				b.balance = p.Balance
			}
		}
	case "STATE":
		if f.State != game.PhaseBetting || f.RoundID == b.betRound {
			return nil
		}
		b.betRound = f.RoundID
		if b.balance <= 0 {
			return []outbound{{typ: ws.CmdResetBalance, body: ws.ResetBalanceCommand{}}}
		}
		side, amount := b.decide()
		return []outbound{{typ: ws.CmdBet, body: ws.BetCommand{Side: string(side), Amount: float64(amount)}, delay: b.think()}}
	case "RESULT":
		if f.Result != nil {
			log.Debug().Int64("round_id", f.Result.RoundID).Int("sum", f.Result.Sum).Str("side", string(f.Result.Side)).Msg("bot_saw_result")
		}
	case "ERR":
		log.Warn().Str("code", f.Code).Str("message", f.Message).Msg("bot_rejected")
	}
	return nil
}

func (b *bot) decide() (game.Side, int64) {
	side := game.SideLow
	if b.rnd.Intn(2) == 0 {
		side = game.SideHigh
	}
	limit := b.cfg.MaxStake
	if limit <= 0 || limit > b.balance {
		limit = b.balance
	}
	return side, 1 + b.rnd.Int63n(limit)
}

func (b *bot) think() time.Duration {
	if b.cfg.Think <= 0 {
		return 0
	}
	return time.Duration(b.rnd.Int63n(int64(b.cfg.Think)))
}

func send(conn *websocket.Conn, typ ws.CommandType, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	fields["type"] = typ
	return conn.WriteJSON(fields)
}
