package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 10 * time.Second
)

// Publisher delivers a report change to downstream listeners.
type Publisher interface {
	Publish(ctx context.Context, change domain.ReportChange) error
}

// Metrics observes the dispatcher's queues and publish outcomes.
type Metrics interface {
	Queued(worker int)
	Dequeued(worker int)
	Dropped()
	Published(kind domain.ChangeKind, err error)
}

type nopMetrics struct{}

func (nopMetrics) Queued(int) {}
func (nopMetrics) Dequeued(int) {}
func (nopMetrics) Dropped() {}
func (nopMetrics) Published(domain.ChangeKind, error) {}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics reports queue depth, drops and publish results to m.
func WithMetrics(m Metrics) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// Dispatcher routes report changes to a fixed set of workers using consistent
// hashing on the report id, guaranteeing per-report event ordering.
type Dispatcher struct {
	workers   []chan domain.ReportChange
	publisher Publisher
	metrics   Metrics
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher Publisher, log zerolog.Logger, opts ...Option) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.ReportChange, numWorkers),
		publisher: publisher,
		metrics:   nopMetrics{},
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ReportChange, channelBuffer)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Close has drained their queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a change to the worker responsible for its report. It never
// blocks the caller: when that worker's buffer is full the change is dropped
// and logged.
func (d *Dispatcher) Enqueue(change domain.ReportChange) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("report_id", change.ReportID).Msg("dispatcher closed, change dropped")
		return
	}
	idx := d.shardIndex(change.ReportID)
	select {
	case d.workers[idx] <- change:
		d.metrics.Queued(idx)
	default:
		d.metrics.Dropped()
		d.log.Warn().Str("report_id", change.ReportID).Str("kind", string(change.Kind)).Msg("event queue full, change dropped")
	}
}

// Close stops accepting changes and waits for queued ones to be published.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a report id deterministically to a worker index.
func (d *Dispatcher) shardIndex(reportID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(reportID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ReportChange) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			d.metrics.Dequeued(id)
			d.publish(ctx, id, change)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, id int, change domain.ReportChange) {
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err := d.publisher.Publish(pctx, change)
	d.metrics.Published(change.Kind, err)
	if err != nil {
		d.log.Error().Err(err).
			Str("report_id", change.ReportID).
			Str("kind", string(change.Kind)).
			Int("worker_id", id).
			Msg("event publishing failed")
	}
}
