package recompute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDispatcherClosed is returned by Submit after Close.
	ErrDispatcherClosed = errors.New("recompute dispatcher closed")
	// ErrQueueFull is returned by Submit when every queue slot is taken.
	ErrQueueFull = errors.New("recompute queue full")
)

// Runner performs one full recompute. *Orchestrator satisfies it.
type Runner interface {
	RecomputeAll(ctx context.Context, seasonID string) Report
}

// Dispatcher runs recomputes on a fixed pool of workers. Submit returns as
// soon as the job is queued; progress is visible through the JobStore and
// every finished job is published to subscribers.
//
// A second submission for a season that is still queued (not yet running)
// returns the queued job instead of adding another.
type Dispatcher struct {
	runner Runner
	jobs   JobStore
	logger *slog.Logger
	queue  chan Job
	wg     sync.WaitGroup
	now    func() time.Time

	mu      sync.Mutex
	closed  bool
	pending map[string]Job
	subs    map[int]chan Job
	nextSub int
}

// NewDispatcher starts workers goroutines draining a queue of queueSize
// slots.
func NewDispatcher(runner Runner, jobs JobStore, workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		runner:  runner,
		jobs:    jobs,
		logger:  logger,
		queue:   make(chan Job, queueSize),
		now:     time.Now,
		pending: make(map[string]Job),
		subs:    make(map[int]chan Job),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for job := range d.queue {
				d.run(job)
			}
		}()
	}
	return d
}

// Submit queues a recompute of seasonID. trigger records who asked for it
// (http, cron, listener, cli).
func (d *Dispatcher) Submit(ctx context.Context, seasonID, trigger string) (Job, error) {
	if seasonID == "" {
		return Job{}, errors.New("submit recompute: season ID is required")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return Job{}, ErrDispatcherClosed
	}
	if job, ok := d.pending[seasonID]; ok {
		d.mu.Unlock()
		d.logger.Info("recompute already queued", "job", job.ID, "season", seasonID, "trigger", trigger)
		return job, nil
	}
	job := Job{
		ID:        uuid.NewString(),
		SeasonID:  seasonID,
		Trigger:   trigger,
		Status:    JobQueued,
		CreatedAt: d.now().UTC(),
	}
	// Reserve the season so concurrent submits coalesce while the job
	// record is written without holding the lock.
	d.pending[seasonID] = job
	d.mu.Unlock()

	if err := d.jobs.Create(ctx, job); err != nil {
		d.release(job)
		return Job{}, fmt.Errorf("submit recompute: %w", err)
	}

	d.mu.Lock()
	rejected := ErrDispatcherClosed
	if !d.closed {
		select {
		case d.queue <- job:
			rejected = nil
		default:
			rejected = ErrQueueFull
		}
	}
	d.mu.Unlock()

	if rejected != nil {
		d.release(job)
		job.Status = JobFailed
		job.Error = rejected.Error()
		finished := d.now().UTC()
		job.FinishedAt = &finished
		if err := d.jobs.Finish(ctx, job); err != nil {
			d.logger.Warn("record rejected job failed", "job", job.ID, "error", err)
		}
		d.logger.Warn("recompute rejected", "job", job.ID, "season", seasonID, "trigger", trigger, "error", rejected)
		return Job{}, rejected
	}

	d.logger.Info("recompute queued", "job", job.ID, "season", seasonID, "trigger", trigger)
	return job, nil
}

// Subscribe returns a channel that receives every job as it finishes, and
// a function that cancels the subscription. A subscriber that falls more
// than buffer jobs behind misses jobs rather than stalling workers.
func (d *Dispatcher) Subscribe(buffer int) (<-chan Job, func()) {
	ch := make(chan Job, buffer)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		close(ch)
		return ch, func() {}
	}
	id := d.nextSub
	d.nextSub++
	d.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if c, ok := d.subs[id]; ok {
				delete(d.subs, id)
				close(c)
			}
		})
	}
}

// Close stops accepting jobs, waits for queued and running jobs to finish
// and closes every subscriber channel.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, ch := range d.subs {
		delete(d.subs, id)
		close(ch)
	}
}

func (d *Dispatcher) run(job Job) {
	// Jobs are never cancelled once submitted.
	ctx := context.Background()

	d.mu.Lock()
	if p, ok := d.pending[job.SeasonID]; ok && p.ID == job.ID {
		delete(d.pending, job.SeasonID)
	}
	d.mu.Unlock()

	started := d.now().UTC()
	job.Status = JobRunning
	job.StartedAt = &started
	if err := d.jobs.MarkRunning(ctx, job.ID, started); err != nil {
		d.logger.Warn("mark job running failed", "job", job.ID, "error", err)
	}

	report := d.runner.RecomputeAll(ctx, job.SeasonID)

	finished := d.now().UTC()
	job.Status = statusOf(report)
	job.Report = &report
	job.Error = strings.Join(report.Errors(), "; ")
	job.FinishedAt = &finished
	if err := d.jobs.Finish(ctx, job); err != nil {
		d.logger.Warn("record job result failed", "job", job.ID, "error", err)
	}

	d.logger.Info("recompute job finished", "job", job.ID, "season", job.SeasonID, "status", job.Status)
	d.publish(job)
}

// release drops a pending reservation that never reached the queue.
func (d *Dispatcher) release(job Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[job.SeasonID]; ok && p.ID == job.ID {
		delete(d.pending, job.SeasonID)
	}
}

func (d *Dispatcher) publish(job Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, ch := range d.subs {
		select {
		case ch <- job:
		default:
			d.logger.Warn("job subscriber lagging, dropped result", "subscriber", id, "job", job.ID)
		}
	}
}
