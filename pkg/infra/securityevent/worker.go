package securityevent

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const defaultBufferSize = 1000

// Worker is an asynchronous Recorder: Record enqueues without blocking
// and a pool of goroutines drains the queue into the configured
// exporters. Exporter dispatch runs behind a circuit breaker so a sink
// that is down stops being called instead of burning the workers.
type Worker struct {
	logger    *logrus.Logger
	exporters []Exporter
	breaker   *gobreaker.CircuitBreaker
	queue     chan Event
	cancel    context.CancelFunc
	ctx       context.Context
	closed    atomic.Bool
	dropped   atomic.Int64
}

func NewWorker(logger *logrus.Logger, exporters ...Exporter) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		logger:    logger,
		exporters: exporters,
		queue:     make(chan Event, defaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "securityevent-exporters",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	return w
}

// Start launches n drain goroutines.
func (w *Worker) Start(n int) {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		go w.drain()
	}
}

// Record enqueues the event without blocking. When the buffer is full the
// event is dropped and counted; losing audit events is preferable to
// stalling the sanitization path.
func (w *Worker) Record(_ context.Context, evt Event) {
	if w.closed.Load() {
		return
	}
	select {
	case w.queue <- evt:
	default:
		w.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded due to a full buffer.
func (w *Worker) Dropped() int64 {
	return w.dropped.Load()
}

// Shutdown stops the drain goroutines and closes the exporters. Events
// still queued are discarded.
func (w *Worker) Shutdown() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	w.cancel()
	close(w.queue)
	for _, e := range w.exporters {
		e.Close()
	}
}

func (w *Worker) drain() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case evt, ok := <-w.queue:
			if !ok {
				return
			}
			w.dispatch(evt)
		}
	}
}

func (w *Worker) dispatch(evt Event) {
	for _, exporter := range w.exporters {
		_, err := w.breaker.Execute(func() (interface{}, error) {
			return nil, exporter.Handle(w.ctx, evt)
		})
		if err != nil && w.logger != nil {
			w.logger.WithFields(logrus.Fields{
				"exporter": exporter.Name(),
				"event_id": evt.ID,
			}).WithError(err).Debug("security event delivery failed")
		}
	}
}
