package sink

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/metrics"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// DefaultQueueSize bounds the events waiting for a slow sink.
const DefaultQueueSize = 256

// drainTimeout bounds how long Close keeps delivering queued events
// before cancelling the ones still in flight.
const drainTimeout = 5 * time.Second

// Queue hands events to a worker goroutine that delivers them to the
// wrapped sink in order. Send and SendSession never block: when the queue
// is full the event is dropped and logged. Close delivers what is queued
// within drainTimeout, then closes the wrapped sink.
type Queue struct {
	next   Sink
	name   string
	logger *slog.Logger
	ch     chan Line
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewQueue starts the worker for next. name labels log lines and metrics.
func NewQueue(next Sink, name string, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		next:   next,
		name:   name,
		logger: logger,
		ch:     make(chan Line, size),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	go q.run()
	return q
}

func (q *Queue) Send(_ context.Context, d verdict.Decision) error {
	q.enqueue(Line{Decision: &d})
	return nil
}

func (q *Queue) SendSession(_ context.Context, e verdict.SessionEvent) error {
	q.enqueue(Line{Session: &e})
	return nil
}

// Dropped is the number of events lost to a full queue.
func (q *Queue) Dropped() int64 { return q.dropped.Load() }

func (q *Queue) enqueue(l Line) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}
	select {
	case q.ch <- l:
	default:
		q.dropped.Add(1)
		metrics.SinkDropped.WithLabelValues(q.name).Inc()
		q.logger.Warn("sink: queue full, event dropped", "sink", q.name, "dropped", q.dropped.Load())
	}
}

func (q *Queue) run() {
	defer close(q.done)
	ctx := q.ctx
	for l := range q.ch {
		var err error
		if l.Decision != nil {
			err = q.next.Send(ctx, *l.Decision)
		} else if l.Session != nil {
			err = q.next.SendSession(ctx, *l.Session)
		}
		if err != nil {
			q.logger.Warn("sink: delivery failed", "sink", q.name, "error", err)
		}
	}
}

func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	t := time.NewTimer(drainTimeout)
	defer t.Stop()
	select {
	case <-q.done:
	case <-t.C:
		q.logger.Warn("sink: drain timed out, cancelling delivery", "sink", q.name, "queued", len(q.ch))
		q.cancel()
		<-q.done
	}
	q.cancel()
	return q.next.Close()
}
