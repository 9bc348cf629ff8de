package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates the named job does not exist.
var ErrNotFound = errors.New("job not found")

// Create inserts a new Pending job for the given spec. Creation is
// idempotent: if a job with the derived name already exists, the existing
// row is returned unchanged and created reports false.
func (s *Store) Create(ctx context.Context, spec Spec) (j *Job, created bool, err error) {
	name := NameForClip(spec.ClipID)
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (
            name, clip_id, game_id, video_id, source_path, destination_path,
            start_offset, end_offset, ttl_seconds_after_finished, backoff_limit,
            phase, attempts, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO NOTHING`,
		name,
		spec.ClipID,
		spec.GameID,
		spec.VideoID,
		spec.SourcePath,
		spec.DestinationPath,
		spec.StartOffset,
		spec.EndOffset,
		spec.TTLSecondsAfterFinished,
		spec.BackoffLimit,
		PhasePending,
		0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	existing, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return existing, affected > 0, nil
}

// GetByName fetches one job by its resource name.
func (s *Store) GetByName(ctx context.Context, name string) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE name = ?", name)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", name, err)
	}
	return j, nil
}

// List returns jobs in the given phases ordered by creation time. With no
// phases it returns every job.
func (s *Store) List(ctx context.Context, phases ...Phase) ([]*Job, error) {
	ctx = ensureContext(ctx)

	query := "SELECT " + jobColumns + " FROM jobs"
	args := make([]any, 0, len(phases))
	if len(phases) > 0 {
		query += " WHERE phase IN (" + makePlaceholders(len(phases)) + ")"
		for _, phase := range phases {
			args = append(args, string(phase))
		}
	}
	query += " ORDER BY created_at ASC, name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// Update persists the job's status fields. Spec columns are never touched;
// they are immutable after Create.
func (s *Store) Update(ctx context.Context, j *Job) error {
	now := time.Now().UTC()
	j.UpdatedAt = now

	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET
            phase = ?,
            started_at = ?,
            completed_at = ?,
            attempts = ?,
            failure_reason = ?,
            retry_at = ?,
            updated_at = ?
        WHERE name = ?`,
		string(j.Phase),
		nullableTime(j.StartedAt),
		nullableTime(j.CompletedAt),
		j.Attempts,
		nullableString(j.FailureReason),
		nullableTime(j.RetryAt),
		now.Format(time.RFC3339Nano),
		j.Name,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", j.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, j.Name)
	}
	return nil
}

// Delete removes a job by name. It reports whether a row was deleted.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM jobs WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("delete job %s: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Expired returns terminal jobs whose retention TTL has elapsed at the
// given time.
func (s *Store) Expired(ctx context.Context, now time.Time) ([]*Job, error) {
	terminal, err := s.List(ctx, PhaseSucceeded, PhaseFailed)
	if err != nil {
		return nil, err
	}
	var expired []*Job
	for _, j := range terminal {
		if j.Expired(now) {
			expired = append(expired, j)
		}
	}
	return expired, nil
}

// Summary aggregates job counts per phase for health reporting.
func (s *Store) Summary(ctx context.Context) (HealthSummary, error) {
	ctx = ensureContext(ctx)

	rows, err := s.db.QueryContext(ctx, "SELECT phase, COUNT(1) FROM jobs GROUP BY phase")
	if err != nil {
		return HealthSummary{}, fmt.Errorf("summarize jobs: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var (
			phase string
			count int
		)
		if err := rows.Scan(&phase, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan summary: %w", err)
		}
		summary.Total += count
		switch Phase(phase) {
		case PhasePending:
			summary.Pending = count
		case PhaseRunning:
			summary.Running = count
		case PhaseSucceeded:
			summary.Succeeded = count
		case PhaseFailed:
			summary.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}
