package batch

import "context"

// Enqueuer hands pipeline steps to the asynchronous task runtime. The
// pipeline only states WHAT should run next; the task layer owns queues,
// retries and worker placement.
type Enqueuer interface {
	// ChainScanDispatch enqueues a readiness scan over the given PE ids
	// followed by a compute dispatch for whatever pairs the scan finds.
	ChainScanDispatch(ctx context.Context, peIDs []int64) error
	// GroupCompute fans out one compute task per pair, all in parallel.
	GroupCompute(ctx context.Context, pairIDs []int64) error
	// EnqueueBatchRun schedules a full discovery run in the background.
	EnqueueBatchRun(ctx context.Context) error
}

// NopEnqueuer discards every enqueue. Used when the pipeline runs inline
// without a task runtime, e.g. in tests.
type NopEnqueuer struct{}

// ChainScanDispatch implements Enqueuer.
func (NopEnqueuer) ChainScanDispatch(context.Context, []int64) error { return nil }

// GroupCompute implements Enqueuer.
func (NopEnqueuer) GroupCompute(context.Context, []int64) error { return nil }

// EnqueueBatchRun implements Enqueuer.
func (NopEnqueuer) EnqueueBatchRun(context.Context) error { return nil }
