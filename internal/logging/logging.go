package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"hilo-casino/internal/config"
	"hilo-casino/internal/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu     sync.RWMutex
	writer       io.Writer = os.Stdout
	requestLevel           = slog.LevelInfo
)

// Init configures the global zerolog logger and the shared output writer.
// It returns a closer for the log file, if one was opened.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(cfg.File); path != "" {
		fw, err := newSizeLimitedWriter(path, cfg.MaxMB)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, fw)
		closer = fw
	}
	reqLevel := slog.LevelInfo
	if v := strings.TrimSpace(cfg.RequestLevel); v != "" {
		if err := reqLevel.UnmarshalText([]byte(v)); err != nil {
			reqLevel = slog.LevelInfo
		}
	}
	setWriter(out, reqLevel)

	var output io.Writer = out
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	lctx := zerolog.New(output).With().Timestamp()
	if svc := strings.TrimSpace(cfg.Service); svc != "" {
		lctx = lctx.Str("service", svc)
	}
	logger := lctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return closer, nil
}

// Writer is the raw sink behind the global logger, shared with the HTTP request logger.
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

// RequestLevel is the slog level the HTTP request logger writes at.
func RequestLevel() slog.Level {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return requestLevel
}

func setWriter(w io.Writer, level slog.Level) {
	writerMu.Lock()
	writer = w
	requestLevel = level
	writerMu.Unlock()
}

// RoomEvents logs every published room event at debug level. Countdown ticks
// are left out.
func RoomEvents() game.Publisher {
	return game.PublisherFunc(func(roomID string, ev game.Event) {
		if ev.Kind() == game.EventCountdown {
			return
		}
		e := log.Debug().Str("room_id", roomID).Str("event", string(ev.Kind()))
		switch v := ev.(type) {
		case game.PhaseChanged:
			e = e.Int64("round_id", v.RoundID).Str("state", string(v.Phase))
		case game.RoundSettled:
			e = e.Int64("round_id", v.Result.RoundID).Int("sum", v.Result.Sum).Int("payouts", len(v.Payouts))
		}
		e.Msg("room_event")
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
