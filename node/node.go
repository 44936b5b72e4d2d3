// Package node assembles the spreadscan services and manages their
// lifecycle: the catalog, the cache, the exchange gateway, the task
// runtime and the HTTP surfaces.
package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cexline/spreadscan/api"
	"github.com/cexline/spreadscan/batch"
	"github.com/cexline/spreadscan/cache"
	"github.com/cexline/spreadscan/catalog"
	"github.com/cexline/spreadscan/cmd/spreadscan/flags"
	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/exchange"
	"github.com/cexline/spreadscan/monitoring/prometheus"
	"github.com/cexline/spreadscan/runtime"
	"github.com/cexline/spreadscan/tasks"
)

var log = logrus.WithField("prefix", "node")

// Node handles the lifecycle of the entire system, registering every
// long-running component into a service registry.
type Node struct {
	cliCtx   *cli.Context
	ctx      context.Context
	cancel   context.CancelFunc
	services *runtime.ServiceRegistry
	lock     sync.RWMutex
	stop     chan struct{}

	store    catalog.Store
	gateway  exchange.Gateway
	cache    batch.SeriesCache
	pipeline *batch.Pipeline
}

// New assembles an API node: pipeline plus JSON API plus metrics.
func New(cliCtx *cli.Context) (*Node, error) {
	n, err := newBase(cliCtx)
	if err != nil {
		return nil, err
	}
	apiService := api.New(&api.Config{
		Host:           cliCtx.String(flags.APIHostFlag.Name),
		Port:           cliCtx.Int(flags.APIPortFlag.Name),
		AllowedOrigins: cliCtx.StringSlice(flags.AllowedOriginsFlag.Name),
		Pipeline:       n.pipeline,
		Store:          n.store,
		Gateway:        n.gateway,
		Cache:          n.cache,
	})
	if err := n.services.RegisterService(apiService); err != nil {
		return nil, err
	}
	return n, n.registerMonitoring()
}

// NewWorker assembles a worker node: pipeline plus task consumer plus
// metrics, no JSON API.
func NewWorker(cliCtx *cli.Context) (*Node, error) {
	n, err := newBase(cliCtx)
	if err != nil {
		return nil, err
	}
	return n, n.registerMonitoring()
}

func newBase(cliCtx *cli.Context) (*Node, error) {
	config.LoadDotEnv()
	ctx, cancel := context.WithCancel(cliCtx.Context)

	n := &Node{
		cliCtx:   cliCtx,
		ctx:      ctx,
		cancel:   cancel,
		services: runtime.NewServiceRegistry(),
		stop:     make(chan struct{}),
	}

	var store catalog.Store
	if cliCtx.Bool(flags.InMemoryCatalogFlag.Name) {
		store = catalog.NewMemoryStore()
	} else {
		pg, err := catalog.NewPGStore(ctx, config.PostgresSettingsFromEnv())
		if err != nil {
			cancel()
			return nil, err
		}
		store = pg
	}
	n.store = store

	redisSettings := config.RedisSettingsFromEnv()
	payloadCache := cache.New(redisSettings)
	n.cache = payloadCache
	n.gateway = exchange.NewCCXTGateway()

	n.pipeline = batch.New(store, n.gateway, payloadCache, nil, flags.BatchSettings(cliCtx))

	taskRuntime, err := tasks.NewRuntime(redisSettings, n.pipeline)
	if err != nil {
		cancel()
		store.Close()
		return nil, err
	}
	n.pipeline.SetEnqueuer(taskRuntime)

	worker := taskRuntime.NewWorkerService(
		fmt.Sprintf("spreadscan-%d", os.Getpid()),
		cliCtx.Int(flags.ConcurrencyFlag.Name),
	)
	if err := n.services.RegisterService(worker); err != nil {
		cancel()
		store.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) registerMonitoring() error {
	addr := fmt.Sprintf(":%d", n.cliCtx.Int(flags.MonitoringPortFlag.Name))
	return n.services.RegisterService(prometheus.NewService(addr, n.services))
}

// Start launches every registered service and blocks until an interrupt
// or a Close call.
func (n *Node) Start() {
	n.lock.Lock()

	log.WithField("interval", n.pipeline.Settings().Interval).Info("Starting spreadscan node")
	n.services.StartAll()

	stop := n.stop
	n.lock.Unlock()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Info("Got interrupt, shutting down...")
		go n.Close()
		for i := 10; i > 0; i-- {
			<-sigc
			if i > 1 {
				log.WithField("times", i-1).Info("Already shutting down, interrupt more to panic")
			}
		}
		panic("Panic closing the spreadscan node")
	}()

	<-stop
}

// Close stops every service in reverse registration order and releases
// external handles.
func (n *Node) Close() {
	n.lock.Lock()
	defer n.lock.Unlock()

	log.Info("Stopping spreadscan node")
	n.services.StopAll()
	if err := n.gateway.Close(); err != nil {
		log.WithError(err).Error("Could not close exchange handles")
	}
	n.store.Close()
	n.cancel()
	close(n.stop)
}
