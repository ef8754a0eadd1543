package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

var errPoolStopped = errors.New("worker pool is stopped")

type job struct {
	path string
	id   int
}

type outcome struct {
	id      int
	summary FileSummary
}

// workerPool runs a fixed number of goroutines over a job channel.
//
// Usage: start, submit every job while draining results on another
// goroutine, finish, then wait. The worker count must not exceed the parser
// pool size or workers block waiting for parsers.
type workerPool struct {
	workers int
	jobs    chan job
	results chan outcome
	process func(ctx context.Context, path string) FileSummary
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started    atomic.Bool
	jobsClosed atomic.Bool

	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

func newWorkerPool(ctx context.Context, workers int, process func(context.Context, string) FileSummary, logger *slog.Logger) *workerPool {
	ctx, cancel := context.WithCancel(ctx)
	return &workerPool{
		workers: workers,
		jobs:    make(chan job, workers*2),
		results: make(chan outcome, workers),
		process: process,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (wp *workerPool) start() {
	if !wp.started.CompareAndSwap(false, true) {
		return
	}
	wp.logger.Debug("starting worker pool", "workers", wp.workers)
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *workerPool) worker(id int) {
	defer wp.wg.Done()
	for {
		select {
		case <-wp.ctx.Done():
			return
		case j, ok := <-wp.jobs:
			if !ok {
				return
			}
			summary := wp.process(wp.ctx, j.path)
			if summary.Error != "" {
				wp.failed.Add(1)
			} else {
				wp.processed.Add(1)
			}
			select {
			case wp.results <- outcome{id: j.id, summary: summary}:
			case <-wp.ctx.Done():
				return
			}
			wp.logger.Debug("worker finished job", "worker_id", id, "file", j.path)
		}
	}
}

func (wp *workerPool) submit(j job) error {
	wp.submitted.Add(1)
	select {
	case <-wp.ctx.Done():
		return errPoolStopped
	case wp.jobs <- j:
		return nil
	}
}

// finish closes the job channel. Safe to call more than once.
func (wp *workerPool) finish() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// wait blocks until every worker has exited, then closes results.
func (wp *workerPool) wait() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
	wp.logger.Debug("worker pool stopped",
		"jobs_submitted", wp.submitted.Load(),
		"jobs_processed", wp.processed.Load(),
		"jobs_failed", wp.failed.Load())
}
