// Package cliprecord updates the relational clip table shared with the
// request-serving application. The worker flips a clip's status as the
// extraction progresses so readers polling the table see processing,
// completed, or failed without talking to the job controller.
package cliprecord

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clipd/internal/config"
)

// Status is the clip lifecycle as seen by the serving application.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrNotFound indicates no clip row exists for the identifier.
var ErrNotFound = errors.New("clip record not found")

// Record is one row of the shared clip table.
type Record struct {
	ClipID          string
	Status          Status
	DestinationPath string
	FailureDetail   string
	UpdatedAt       time.Time
}

// Store wraps the shared clip database.
type Store struct {
	db   *sql.DB
	path string
}

const clipSchema = `
CREATE TABLE IF NOT EXISTS clips (
    clip_id TEXT PRIMARY KEY,
    status TEXT NOT NULL DEFAULT 'pending',
    destination_path TEXT,
    failure_detail TEXT,
    updated_at TEXT NOT NULL
);
`

// Open connects to the clip database configured in cfg. The clips table is
// created when absent so a fresh deployment works without the serving
// application having run first.
func Open(cfg *config.Config) (*Store, error) {
	path := cfg.ClipDB.Path
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("clip database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create clip db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open clip db: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout = 5000"} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(clipSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure clips table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get fetches one clip record by identifier.
func (s *Store) Get(ctx context.Context, clipID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT clip_id, status, destination_path, failure_detail, updated_at FROM clips WHERE clip_id = ?",
		clipID)

	var (
		rec         Record
		statusStr   string
		destination sql.NullString
		detail      sql.NullString
		updatedRaw  string
	)
	err := row.Scan(&rec.ClipID, &statusStr, &destination, &detail, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clipID)
	}
	if err != nil {
		return nil, fmt.Errorf("get clip %s: %w", clipID, err)
	}
	rec.Status = Status(statusStr)
	rec.DestinationPath = destination.String
	rec.FailureDetail = detail.String
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		rec.UpdatedAt = updated
	}
	return &rec, nil
}

// Ensure creates a pending row for the clip when none exists yet.
func (s *Store) Ensure(ctx context.Context, clipID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clips (clip_id, status, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(clip_id) DO NOTHING`,
		clipID, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ensure clip %s: %w", clipID, err)
	}
	return nil
}

// MarkProcessing flips the clip to processing and clears any stale failure
// detail from an earlier attempt.
func (s *Store) MarkProcessing(ctx context.Context, clipID string) error {
	return s.setStatus(ctx, clipID, StatusProcessing, "", "")
}

// MarkCompleted records success and the object path of the produced clip.
func (s *Store) MarkCompleted(ctx context.Context, clipID, destinationPath string) error {
	return s.setStatus(ctx, clipID, StatusCompleted, destinationPath, "")
}

// MarkFailed records the failure detail for the clip.
func (s *Store) MarkFailed(ctx context.Context, clipID, detail string) error {
	return s.setStatus(ctx, clipID, StatusFailed, "", detail)
}

func (s *Store) setStatus(ctx context.Context, clipID string, status Status, destinationPath, detail string) error {
	if err := s.Ensure(ctx, clipID); err != nil {
		return err
	}

	var destination, failure any
	if destinationPath != "" {
		destination = destinationPath
	}
	if detail != "" {
		failure = detail
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE clips SET status = ?, destination_path = ?, failure_detail = ?, updated_at = ? WHERE clip_id = ?`,
		string(status),
		destination,
		failure,
		time.Now().UTC().Format(time.RFC3339Nano),
		clipID)
	if err != nil {
		return fmt.Errorf("update clip %s: %w", clipID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, clipID)
	}
	return nil
}
