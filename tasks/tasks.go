// Package tasks binds the discovery pipeline to the machinery task
// runtime: redis-brokered queues, a scan-then-dispatch chain per fetch
// chunk and a parallel compute group per ready pair set.
package tasks

import (
	"context"

	"github.com/RichardKnop/machinery/v2"
	redisbackend "github.com/RichardKnop/machinery/v2/backends/redis"
	redisbroker "github.com/RichardKnop/machinery/v2/brokers/redis"
	machineryconfig "github.com/RichardKnop/machinery/v2/config"
	eagerlock "github.com/RichardKnop/machinery/v2/locks/eager"
	mtasks "github.com/RichardKnop/machinery/v2/tasks"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cexline/spreadscan/batch"
	"github.com/cexline/spreadscan/config"
)

var log = logrus.WithField("prefix", "tasks")

// Registered task names.
const (
	TaskBatchRun        = "batch_run"
	TaskScanReady       = "scan_ready"
	TaskDispatchCompute = "dispatch_compute"
	TaskComputePair     = "compute_pair"
)

// DefaultQueue is the redis list workers consume from.
const DefaultQueue = "spreadscan_tasks"

// Runtime owns the machinery server and implements batch.Enqueuer on top
// of it. The same redis instance backs the broker, the result backend and
// the payload cache.
type Runtime struct {
	server   *machinery.Server
	pipeline *batch.Pipeline
}

var _ batch.Enqueuer = (*Runtime)(nil)

// NewRuntime builds the machinery server against redis and registers the
// pipeline task functions.
func NewRuntime(settings *config.RedisSettings, pipeline *batch.Pipeline) (*Runtime, error) {
	cnf := &machineryconfig.Config{
		DefaultQueue:    DefaultQueue,
		ResultsExpireIn: 3600,
		Redis: &machineryconfig.RedisConfig{
			MaxIdle:                3,
			IdleTimeout:            240,
			ReadTimeout:            15,
			WriteTimeout:           15,
			ConnectTimeout:         15,
			NormalTasksPollPeriod:  1000,
			DelayedTasksPollPeriod: 500,
		},
	}
	broker := redisbroker.NewGR(cnf, []string{settings.Addr()}, settings.DB)
	backend := redisbackend.NewGR(cnf, []string{settings.Addr()}, settings.DB)
	server := machinery.NewServer(cnf, broker, backend, eagerlock.New())

	r := &Runtime{server: server, pipeline: pipeline}
	if err := server.RegisterTasks(map[string]interface{}{
		TaskBatchRun:        r.runBatch,
		TaskScanReady:       r.scanReady,
		TaskDispatchCompute: r.dispatchCompute,
		TaskComputePair:     r.computePair,
	}); err != nil {
		return nil, errors.Wrap(err, "could not register tasks")
	}
	return r, nil
}

func (r *Runtime) runBatch() error {
	return r.pipeline.Run(context.Background())
}

// scanReady feeds its result to dispatchCompute through the chain.
func (r *Runtime) scanReady(peIDs []int64) ([]int64, error) {
	return r.pipeline.ScanReady(context.Background(), peIDs)
}

func (r *Runtime) dispatchCompute(pairIDs []int64) error {
	return r.pipeline.Dispatch(context.Background(), pairIDs)
}

func (r *Runtime) computePair(pairID int64) error {
	return r.pipeline.ComputePair(context.Background(), pairID)
}

// ChainScanDispatch implements batch.Enqueuer. The scan result flows into
// the dispatch task as its argument.
func (r *Runtime) ChainScanDispatch(ctx context.Context, peIDs []int64) error {
	chain, err := mtasks.NewChain(scanSignature(peIDs), &mtasks.Signature{Name: TaskDispatchCompute})
	if err != nil {
		return errors.Wrap(err, "could not build scan chain")
	}
	if _, err := r.server.SendChainWithContext(ctx, chain); err != nil {
		return errors.Wrap(err, "could not send scan chain")
	}
	return nil
}

// GroupCompute implements batch.Enqueuer.
func (r *Runtime) GroupCompute(ctx context.Context, pairIDs []int64) error {
	group, err := mtasks.NewGroup(computeSignatures(pairIDs)...)
	if err != nil {
		return errors.Wrap(err, "could not build compute group")
	}
	if _, err := r.server.SendGroupWithContext(ctx, group, 0); err != nil {
		return errors.Wrap(err, "could not send compute group")
	}
	log.WithField("pairs", len(pairIDs)).Debug("Compute group enqueued")
	return nil
}

// EnqueueBatchRun implements batch.Enqueuer.
func (r *Runtime) EnqueueBatchRun(ctx context.Context) error {
	if _, err := r.server.SendTaskWithContext(ctx, &mtasks.Signature{Name: TaskBatchRun}); err != nil {
		return errors.Wrap(err, "could not enqueue batch run")
	}
	log.Info("Discovery run enqueued")
	return nil
}

func scanSignature(peIDs []int64) *mtasks.Signature {
	return &mtasks.Signature{
		Name: TaskScanReady,
		Args: []mtasks.Arg{{Type: "[]int64", Value: peIDs}},
	}
}

func computeSignatures(pairIDs []int64) []*mtasks.Signature {
	sigs := make([]*mtasks.Signature, len(pairIDs))
	for i, pairID := range pairIDs {
		sigs[i] = &mtasks.Signature{
			Name: TaskComputePair,
			Args: []mtasks.Arg{{Type: "int64", Value: pairID}},
		}
	}
	return sigs
}
