package resultpush

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

var errCircuitOpen = errors.New("circuit_open")

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case job := <-m.dispatchCh:
			metricPushQueueLen.Set(int64(len(m.dispatchCh)))
			m.processJob(ctx, job)
		}
	}
}

func (m *Manager) processJob(ctx context.Context, job pushJob) {
	sink := m.sinks[job.Sink]
	if sink == nil {
		metricPushDroppedTotal.Add(1)
		return
	}

	if err := m.beforeSend(job.Sink, time.Now()); err != nil {
		metricPushCircuitOpenTotal.Add(1)
		m.retryOrDrop(job, err)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.cfg.DeliverTimeout)
	err := sink.Deliver(sendCtx, job.Record)
	cancel()
	if err != nil {
		metricPushFailedTotal.Add(1)
		m.afterFailure(job.Sink, time.Now())
		m.retryOrDrop(job, err)
		return
	}

	metricPushSentTotal.Add(1)
	m.afterSuccess(job.Sink)
}

func (m *Manager) retryOrDrop(job pushJob, err error) bool {
	if job.Attempt >= m.cfg.RetryMax {
		metricPushRetryDroppedTotal.Add(1)
		log.Error().Err(err).
			Str("sink", job.Sink).
			Str("room_id", job.Record.RoomID).
			Int64("round_id", job.Record.RoundID).
			Int("attempts", job.Attempt+1).
			Msg("result_push_failed")
		return false
	}
	job.Attempt++
	metricPushRetryTotal.Add(1)
	delay := m.cfg.RetryBase * time.Duration(1<<(job.Attempt-1))
	m.retryQ.Enqueue(job, delay)
	return true
}

func (m *Manager) beforeSend(sink string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.breakerBySink[sink]
	if !state.openUntil.IsZero() && now.Before(state.openUntil) {
		return errCircuitOpen
	}
	return nil
}

func (m *Manager) afterFailure(sink string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.breakerBySink[sink]
	state.consecutiveFailures++
	if state.consecutiveFailures >= m.cfg.FailureThreshold {
		state.openUntil = now.Add(m.cfg.CircuitOpen)
		state.consecutiveFailures = 0
		log.Warn().Str("sink", sink).Time("open_until", state.openUntil).Msg("result_push_circuit_open")
	}
	m.breakerBySink[sink] = state
}

func (m *Manager) afterSuccess(sink string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakerBySink[sink] = breakerState{}
}
