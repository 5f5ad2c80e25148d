package recompute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresJobStore keeps job records in the recompute_jobs table so status
// survives restarts and is shared between API replicas.
type PostgresJobStore struct {
	pool *pgxpool.Pool
}

func NewPostgresJobStore(pool *pgxpool.Pool) *PostgresJobStore {
	return &PostgresJobStore{pool: pool}
}

func (p *PostgresJobStore) Create(ctx context.Context, job Job) error {
	_, err := p.pool.Exec(ctx, "job_insert", job.ID, job.SeasonID, job.Trigger, string(job.Status), job.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (p *PostgresJobStore) MarkRunning(ctx context.Context, id string, at time.Time) error {
	tag, err := p.pool.Exec(ctx, "job_mark_running", id, at)
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (p *PostgresJobStore) Finish(ctx context.Context, job Job) error {
	var report []byte
	if job.Report != nil {
		report, _ = json.Marshal(job.Report)
	}
	tag, err := p.pool.Exec(ctx, "job_finish", job.ID, string(job.Status), report, job.Error, job.FinishedAt)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (p *PostgresJobStore) Get(ctx context.Context, id string) (Job, error) {
	job, err := scanJob(p.pool.QueryRow(ctx, "job_get", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (p *PostgresJobStore) Recent(ctx context.Context, limit int) ([]Job, error) {
	rows, err := p.pool.Query(ctx, "job_recent", limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// scanJob reads the column list shared by job_get and job_recent.
func scanJob(row pgx.Row) (Job, error) {
	var (
		job     Job
		status  string
		report  []byte
		errText *string
	)
	if err := row.Scan(&job.ID, &job.SeasonID, &job.Trigger, &status, &report, &errText,
		&job.CreatedAt, &job.StartedAt, &job.FinishedAt); err != nil {
		return Job{}, err
	}
	job.Status = JobStatus(status)
	if errText != nil {
		job.Error = *errText
	}
	if len(report) > 0 {
		var r Report
		if err := json.Unmarshal(report, &r); err != nil {
			return Job{}, fmt.Errorf("decode report: %w", err)
		}
		job.Report = &r
	}
	return job, nil
}
