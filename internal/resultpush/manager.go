package resultpush

import (
	"context"
	"sync"
	"time"

	"hilo-casino/internal/game"

	"github.com/rs/zerolog/log"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

// Manager delivers settled rounds to every sink from a worker pool, retrying
// with exponential backoff and opening a per-sink circuit after repeated failures.
type Manager struct {
	cfg   Config
	sinks map[string]Sink
	order []string

	dispatchCh chan pushJob
	retryQ     *retryQueue
	done       chan struct{}
	wg         sync.WaitGroup

	mu            sync.Mutex
	started       bool
	breakerBySink map[string]breakerState
}

func NewManager(cfg Config, sinks ...Sink) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.CircuitOpen <= 0 {
		cfg.CircuitOpen = 30 * time.Second
	}
	if cfg.DeliverTimeout <= 0 {
		cfg.DeliverTimeout = 3 * time.Second
	}
	m := &Manager{
		cfg:           cfg,
		sinks:         map[string]Sink{},
		dispatchCh:    make(chan pushJob, cfg.QueueSize),
		done:          make(chan struct{}),
		breakerBySink: map[string]breakerState{},
	}
	for _, s := range sinks {
		if s == nil {
			continue
		}
		if _, dup := m.sinks[s.Name()]; dup {
			continue
		}
		m.sinks[s.Name()] = s
		m.order = append(m.order, s.Name())
	}
	m.retryQ = newRetryQueue(m.dispatchCh, m.done)
	return m
}

func (m *Manager) Sinks() []string {
	return append([]string(nil), m.order...)
}

// Start launches the workers. They stop when ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started || len(m.sinks) == 0 {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.worker(ctx)
		}()
	}
	go func() {
		<-ctx.Done()
		close(m.done)
	}()
	log.Info().Int("workers", m.cfg.Workers).Strs("sinks", m.order).Msg("result_push_started")
}

// Wait blocks until every worker has exited.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Publish queues a settled round for every sink. Other events are ignored.
func (m *Manager) Publish(roomID string, ev game.Event) {
	settled, ok := ev.(game.RoundSettled)
	if !ok || len(m.sinks) == 0 {
		return
	}
	rec := RecordFromEvent(settled)
	for _, name := range m.order {
		if !m.enqueue(pushJob{Sink: name, Record: rec}) {
			metricPushDroppedTotal.Add(1)
			log.Warn().Str("sink", name).Str("room_id", roomID).Int64("round_id", rec.RoundID).Msg("result_push_dropped")
		}
	}
}

func (m *Manager) enqueue(job pushJob) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- job:
		metricPushQueuedTotal.Add(1)
		metricPushQueueLen.Set(int64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}
