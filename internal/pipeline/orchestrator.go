package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docstruct/internal/config"
)

var (
	ErrQueueFull = errors.New("job queue is full")
	ErrStopped   = errors.New("pipeline is stopped")
)

// Orchestrator runs conversion jobs on a fixed pool of workers fed by a
// bounded queue.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	log   *slog.Logger
	cfg   config.Config

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Stats summarizes the pipeline for the stats endpoint.
type Stats struct {
	Workers    int               `json:"workers"`
	QueueDepth int               `json:"queue_depth"`
	QueueSize  int               `json:"queue_size"`
	Jobs       int               `json:"jobs"`
	ByStatus   map[JobStatus]int `json:"by_status"`
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		log:   log,
		cfg:   cfg,
	}
}

// Start launches the workers and the job store sweeper.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go o.run(ctx, NewWorker(o.log.With("worker", i), o.cfg.PDFFallbackPdftotext))
	}

	o.wg.Add(1)
	go o.sweep(ctx, sweepInterval(o.cfg.JobTTL))
}

func (o *Orchestrator) run(ctx context.Context, w *Worker) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) sweep(ctx context.Context, every time.Duration) {
	defer o.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := o.jobs.Cleanup(); n > 0 {
				o.log.Debug("evicted expired jobs", "count", n)
			}
		}
	}
}

// sweepInterval checks for expired jobs twice per TTL, at most every five
// minutes.
func sweepInterval(ttl time.Duration) time.Duration {
	every := ttl / 2
	if every <= 0 || every > 5*time.Minute {
		every = 5 * time.Minute
	}
	return every
}

// Stop cancels the workers and waits for them to exit. Jobs still queued
// stay in the store with status queued.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit registers the job and queues it. A job that cannot be queued is
// still registered, marked failed, so its status stays queryable.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "queued")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError(ErrQueueFull.Error())
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats reports queue usage and job counts by status.
func (o *Orchestrator) Stats() Stats {
	byStatus := o.jobs.Counts()
	total := 0
	for _, n := range byStatus {
		total += n
	}
	return Stats{
		Workers:    o.cfg.WorkerCount,
		QueueDepth: len(o.queue),
		QueueSize:  cap(o.queue),
		Jobs:       total,
		ByStatus:   byStatus,
	}
}
