package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"orxport/internal/logging"
	"orxport/internal/services"
)

const defaultPollInterval = 100 * time.Millisecond

// WorkerError reports the job that stopped a worker.
type WorkerError struct {
	Worker int
	Emoji  string
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d failed exporting %s: %v", e.Worker, e.Emoji, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

// JobFunc processes one job on the worker with the given index.
type JobFunc func(ctx context.Context, worker int, job *Job) error

// Scheduler runs jobs on a fixed pool of workers sharing one queue.
type Scheduler struct {
	Workers  int
	Progress *Progress
	Reporter Reporter
	// PollInterval is how often progress is reported; zero uses 100ms.
	PollInterval time.Duration
	Logger       *slog.Logger
}

type workerResult struct {
	worker int
	err    error
}

// Run processes every job with fn and returns once all workers have exited.
// The first worker error stops the remaining workers from claiming jobs and
// is returned as a *WorkerError. Cancelling ctx stops claims too; the
// returned error then wraps ctx.Err().
func (s *Scheduler) Run(ctx context.Context, jobs []*Job, fn JobFunc) error {
	if len(jobs) == 0 {
		return nil
	}
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	progress := s.Progress
	if progress == nil {
		progress = NewProgress(len(jobs))
	}
	workers := max(1, min(s.Workers, len(jobs)))
	interval := s.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	queue := make(chan *Job, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	stop := make(chan struct{})
	results := make(chan workerResult, workers)
	var wg sync.WaitGroup
	for id := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- workerResult{worker: id, err: work(ctx, id, queue, stop, progress, fn)}
		}()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var failure error
	stopped := false
	halt := func() {
		if !stopped {
			stopped = true
			close(stop)
		}
	}
	done := ctx.Done()
	for remaining := workers; remaining > 0; {
		select {
		case res := <-results:
			remaining--
			if res.err != nil && failure == nil {
				failure = res.err
				if ctx.Err() == nil {
					logger.Error("worker failed, stopping export",
						logging.Int(logging.FieldWorker, res.worker),
						logging.Error(res.err),
					)
				}
				halt()
			}
		case <-ticker.C:
			s.report(progress)
		case <-done:
			done = nil
			logger.Warn("export interrupted, waiting for workers")
			halt()
		}
	}
	wg.Wait()
	s.report(progress)

	if err := ctx.Err(); err != nil && (failure == nil || isInterruption(failure)) {
		return fmt.Errorf("%w: export interrupted: %w", services.ErrCancelled, err)
	}
	return failure
}

func (s *Scheduler) report(progress *Progress) {
	if s.Reporter != nil {
		s.Reporter.Update(progress.Completed(), progress.Total())
	}
}

func work(ctx context.Context, id int, queue <-chan *Job, stop <-chan struct{}, progress *Progress, fn JobFunc) error {
	ctx = services.WithWorker(ctx, id)
	for {
		select {
		case <-stop:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}
		job, ok := <-queue
		if !ok {
			return nil
		}
		if err := fn(services.WithEmoji(ctx, job.Emoji.Label()), id, job); err != nil {
			return &WorkerError{Worker: id, Emoji: job.Emoji.Label(), Err: err}
		}
		progress.Done()
	}
}

func isInterruption(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
