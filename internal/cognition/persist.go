package cognition

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// persistRetryCap bounds the retry backlog for failed writes.
const persistRetryCap = 100

type persistOp struct {
	name string
	fn   func() error
}

// PersistQueue applies persistence operations in submission order on a
// single worker, so concurrent ticks never interleave writes to the same
// record. Failed writes land in a bounded retry backlog that is drained
// before the next fresh op; storage failure never blocks cognition.
type PersistQueue struct {
	ch      chan persistOp
	mu      sync.Mutex
	retries []persistOp
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	log     zerolog.Logger
}

// NewPersistQueue starts the worker. Call Stop to shut it down.
func NewPersistQueue(log zerolog.Logger) *PersistQueue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &PersistQueue{
		ch:     make(chan persistOp, 64),
		cancel: cancel,
		log:    log,
	}
	q.wg.Add(1)
	go q.run(ctx)
	return q
}

// Stop cancels the worker and waits for it to exit.
func (q *PersistQueue) Stop() {
	q.cancel()
	q.wg.Wait()
}

// Enqueue submits an op. Drops with a log line if the queue is saturated,
// keeping the scheduling ticks non-blocking.
func (q *PersistQueue) Enqueue(name string, fn func() error) {
	select {
	case q.ch <- persistOp{name: name, fn: fn}:
	default:
		q.log.Warn().Str("op", name).Msg("persist queue full, dropping write")
	}
}

// PendingRetries returns the retry backlog size.
func (q *PersistQueue) PendingRetries() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.retries)
}

func (q *PersistQueue) run(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-q.ch:
			q.drainRetries()
			q.apply(op)
		}
	}
}

func (q *PersistQueue) drainRetries() {
	q.mu.Lock()
	backlog := q.retries
	q.retries = nil
	q.mu.Unlock()
	for _, op := range backlog {
		q.apply(op)
	}
}

func (q *PersistQueue) apply(op persistOp) {
	if err := op.fn(); err != nil {
		q.log.Warn().Err(err).Str("op", op.name).Msg("persist failed, queued for retry")
		q.mu.Lock()
		if len(q.retries) < persistRetryCap {
			q.retries = append(q.retries, op)
		}
		q.mu.Unlock()
	}
}
