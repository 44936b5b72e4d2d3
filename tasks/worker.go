package tasks

import (
	"sync"

	"github.com/RichardKnop/machinery/v2"
	"github.com/pkg/errors"
)

// WorkerService runs a machinery worker consuming the task queue. It
// satisfies the runtime service registry contract.
type WorkerService struct {
	worker *machinery.Worker

	mu      sync.Mutex
	running bool
	runErr  error
}

// NewWorkerService builds a worker with the given consumer tag and
// concurrency. Concurrency zero lets machinery pick its default.
func (r *Runtime) NewWorkerService(tag string, concurrency int) *WorkerService {
	return &WorkerService{worker: r.server.NewWorker(tag, concurrency)}
}

// Start launches the consumer loop in the background.
func (w *WorkerService) Start() {
	w.mu.Lock()
	w.running = true
	w.mu.Unlock()
	log.Info("Starting task worker")
	go func() {
		err := w.worker.Launch()
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.running {
			w.runErr = err
		}
	}()
}

// Stop quits the consumer loop.
func (w *WorkerService) Stop() error {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	w.worker.Quit()
	return nil
}

// Status surfaces a consumer loop failure.
func (w *WorkerService) Status() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.runErr != nil {
		return errors.Wrap(w.runErr, "task worker terminated")
	}
	return nil
}
