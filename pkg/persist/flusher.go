package persist

import (
	"context"
	"time"

	"github.com/nimasrn/retail-ledger/pkg/logger"
	"github.com/nimasrn/retail-ledger/pkg/prom"
	"github.com/nimasrn/retail-ledger/pkg/worker"
)

const flushTimeout = 30 * time.Second

// Store is the part of the store handle the flusher needs.
type Store interface {
	Flush(ctx context.Context) error
}

// Flusher mirrors the full database image to device storage after committed
// transactions. It runs a single background worker: flushes never interleave
// and a flush failure is logged and counted, never propagated back into the
// already-committed mutation.
type Flusher struct {
	store Store
	pool  *worker.Pool
}

func New(store Store) *Flusher {
	f := &Flusher{
		store: store,
		pool:  worker.NewPool(1, 1),
	}
	f.pool.SetHandler(func(_ int, _ interface{}) { f.flush() })
	f.pool.Start()
	return f
}

// Enqueue requests a flush. A request is dropped when one is already
// pending; the pending flush serializes everything committed so far.
func (f *Flusher) Enqueue() {
	f.pool.TryEnqueue(struct{}{})
}

func (f *Flusher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	start := time.Now()
	if err := f.store.Flush(ctx); err != nil {
		prom.IncCounter(prom.SystemStore, prom.MetricFlushFailures)
		logger.Error("flush to device storage failed", "error", err)
		return
	}
	prom.AddHistogram(prom.SystemStore, prom.MetricFlushDuration, time.Since(start).Seconds())
	logger.Debug("flushed database image", "took", time.Since(start).String())
}

// Close drains pending flushes and stops the worker.
func (f *Flusher) Close() {
	f.pool.Stop()
}
