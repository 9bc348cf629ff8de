package job

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "name, clip_id, game_id, video_id, source_path, destination_path, start_offset, end_offset, ttl_seconds_after_finished, backoff_limit, phase, started_at, completed_at, attempts, failure_reason, retry_at, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		name          string
		clipID        string
		gameID        string
		videoID       string
		sourcePath    string
		destination   string
		startOffset   string
		endOffset     string
		ttlSeconds    int
		backoffLimit  int
		phaseStr      string
		startedRaw    sql.NullString
		completedRaw  sql.NullString
		attempts      int
		failureReason sql.NullString
		retryRaw      sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&name,
		&clipID,
		&gameID,
		&videoID,
		&sourcePath,
		&destination,
		&startOffset,
		&endOffset,
		&ttlSeconds,
		&backoffLimit,
		&phaseStr,
		&startedRaw,
		&completedRaw,
		&attempts,
		&failureReason,
		&retryRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	j := &Job{
		Name: name,
		Spec: Spec{
			ClipID:                  clipID,
			GameID:                  gameID,
			VideoID:                 videoID,
			SourcePath:              sourcePath,
			DestinationPath:         destination,
			StartOffset:             startOffset,
			EndOffset:               endOffset,
			TTLSecondsAfterFinished: ttlSeconds,
			BackoffLimit:            backoffLimit,
		},
		Phase:         Phase(phaseStr),
		Attempts:      attempts,
		FailureReason: failureReason.String,
	}

	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			j.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			j.CompletedAt = &completed
		}
	}
	if retryRaw.Valid {
		if retry, err := parseTimeString(retryRaw.String); err == nil {
			j.RetryAt = &retry
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		j.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		j.UpdatedAt = updated
	}
	return j, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
