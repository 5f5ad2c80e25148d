package recompute

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrJobNotFound is returned by a JobStore for an unknown job ID.
var ErrJobNotFound = errors.New("recompute job not found")

// JobStatus is the lifecycle state of a recompute job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobPartial   JobStatus = "partial"
	JobFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == JobSucceeded || s == JobPartial || s == JobFailed
}

// Job is one submitted recompute.
type Job struct {
	ID         string     `json:"id"`
	SeasonID   string     `json:"seasonId"`
	Trigger    string     `json:"trigger"`
	Status     JobStatus  `json:"status"`
	Report     *Report    `json:"report,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// statusOf maps a report onto a terminal job status.
func statusOf(r Report) JobStatus {
	switch {
	case r.Failed() == 0:
		return JobSucceeded
	case r.Succeeded() == 0:
		return JobFailed
	default:
		return JobPartial
	}
}

// JobStore persists job status records.
type JobStore interface {
	Create(ctx context.Context, job Job) error
	MarkRunning(ctx context.Context, id string, at time.Time) error
	Finish(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, error)
	Recent(ctx context.Context, limit int) ([]Job, error)
}

// MemoryJobStore keeps job records in process.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]Job)}
}

func (m *MemoryJobStore) Create(_ context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *MemoryJobStore) MarkRunning(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = JobRunning
	job.StartedAt = &at
	m.jobs[id] = job
	return nil
}

func (m *MemoryJobStore) Finish(_ context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *MemoryJobStore) Get(_ context.Context, id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

// Recent returns up to limit jobs, newest first.
func (m *MemoryJobStore) Recent(_ context.Context, limit int) ([]Job, error) {
	m.mu.RLock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
