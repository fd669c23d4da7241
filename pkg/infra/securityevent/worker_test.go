package securityevent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SafeField/FieldGate/pkg/threat"
)

type captureExporter struct {
	mu     sync.Mutex
	events []Event
	err    error
	closed bool
}

func (c *captureExporter) Name() string { return "capture" }

func (c *captureExporter) Handle(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *captureExporter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *captureExporter) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestWorker_DeliversAsync(t *testing.T) {
	exp := &captureExporter{}
	w := NewWorker(newTestLogger(), exp)
	w.Start(2)
	defer w.Shutdown()

	for i := 0; i < 10; i++ {
		w.Record(context.Background(), NewEvent("SQL_INJECTION_DETECTED", "comment", "plainText",
			threat.SeverityCritical, "test", "' OR 1=1"))
	}

	waitFor(t, func() bool { return len(exp.received()) == 10 })
	assert.Equal(t, int64(0), w.Dropped())
}

func TestWorker_DropsWhenFull(t *testing.T) {
	// No drain goroutines, so the buffer fills and overflow is counted.
	w := NewWorker(newTestLogger())

	for i := 0; i < defaultBufferSize+25; i++ {
		w.Record(context.Background(), Event{ID: "x", Kind: "test"})
	}

	assert.Equal(t, int64(25), w.Dropped())
	w.Shutdown()
}

func TestWorker_RecordAfterShutdown(t *testing.T) {
	w := NewWorker(newTestLogger())
	w.Shutdown()

	// Must neither panic nor block.
	w.Record(context.Background(), Event{Kind: "late"})
	w.Shutdown()
}

func TestWorker_ClosesExporters(t *testing.T) {
	exp := &captureExporter{}
	w := NewWorker(newTestLogger(), exp)
	w.Start(1)
	w.Shutdown()

	exp.mu.Lock()
	defer exp.mu.Unlock()
	assert.True(t, exp.closed)
}

func TestWorker_ExporterFailuresAreContained(t *testing.T) {
	exp := &captureExporter{err: errors.New("sink down")}
	w := NewWorker(newTestLogger(), exp)
	w.Start(1)
	defer w.Shutdown()

	// Repeated failures trip the breaker; the caller never notices either
	// way.
	for i := 0; i < 20; i++ {
		w.Record(context.Background(), Event{ID: "x", Kind: "test"})
	}

	waitFor(t, func() bool { return len(w.queue) == 0 })
	assert.Empty(t, exp.received())
}

func TestNewEvent_TruncatesMatch(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}

	evt := NewEvent("MARKUP_INJECTION_DETECTED", "bio", "richText",
		threat.SeverityHigh, "test", string(long))

	require.NotEmpty(t, evt.ID)
	assert.False(t, evt.Timestamp.IsZero())
	assert.Len(t, evt.Match, 100)
	assert.Equal(t, "...", evt.Match[97:])
}
