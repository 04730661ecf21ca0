package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gridpulse-lab/gridpulse/internal/core/storage"
	"github.com/gridpulse-lab/gridpulse/internal/observability/metrics"
)

// Session owns the per-process ingestion state: the insert sequence and the
// set of inserts still in flight. Messages that fail are dropped, never
// redelivered.
type Session struct {
	store    storage.TelemetryWriter
	location *time.Location

	seq      atomic.Int64
	inflight sync.WaitGroup
}

// NewSession creates a session writing to store. loc only formats the
// server time in log lines; nil means UTC.
func NewSession(store storage.TelemetryWriter, loc *time.Location) *Session {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Session{store: store, location: loc}
}

// HandleMessage maps and persists one message from topic. The returned error
// is informational; the message is already logged and dropped.
func (s *Session) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	s.inflight.Add(1)
	defer s.inflight.Done()

	metrics.IncMessageReceived(topic)

	if !utf8.Valid(payload) {
		slog.Warn("[MQTT] Dropping message with invalid encoding", "topic", topic, "size", len(payload))
		metrics.IncMessageDropped(metrics.DropInvalidEncoding)
		return ErrInvalidEncoding
	}

	row, err := MapPayload(payload, topic)
	if err != nil {
		reason := metrics.DropMalformed
		if errors.Is(err, ErrMissingLoad) {
			reason = metrics.DropMissingLoad
		}
		slog.Warn("[MQTT] Dropping message", "topic", topic, "reason", reason, "error", err)
		metrics.IncMessageDropped(reason)
		return err
	}

	start := time.Now()
	if err := s.store.InsertTelemetry(ctx, &row); err != nil {
		metrics.ObserveInsert(metrics.ResultError, time.Since(start))
		metrics.IncMessageDropped(metrics.DropStoreError)
		slog.Error("[DB] Insert failed", "device", topic, "error", err)
		return fmt.Errorf("insert telemetry for %s: %w", topic, err)
	}
	metrics.ObserveInsert(metrics.ResultSuccess, time.Since(start))

	n := s.seq.Add(1)
	slog.Info(fmt.Sprintf("[DB] Insert OK #%d", n),
		"id", row.ID,
		"time", row.TimeKey.In(s.location).Format(time.DateTime),
		"device", row.DeviceID)
	return nil
}

// Sequence returns the number of rows inserted by this session.
func (s *Session) Sequence() int64 {
	return s.seq.Load()
}

// Drain blocks until in-flight messages finish or ctx is done.
func (s *Session) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("[MQTT] Ingestion drained", "inserted", s.Sequence())
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain interrupted with inserts in flight: %w", ctx.Err())
	}
}
