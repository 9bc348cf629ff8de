package testsupport

import (
	"context"
	"testing"

	"clipd/internal/config"
	"clipd/internal/job"
)

// MustOpenStore opens a job.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *job.Store {
	t.Helper()

	store, err := job.Open(cfg)
	if err != nil {
		t.Fatalf("job.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a Pending job for tests using the provided store.
func NewJob(t testing.TB, store *job.Store, spec job.Spec) *job.Job {
	t.Helper()

	created, _, err := store.Create(context.Background(), spec)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return created
}

// ClipSpec returns a plausible job spec for the given clip identifier.
func ClipSpec(clipID string) job.Spec {
	return job.Spec{
		ClipID:                  clipID,
		GameID:                  "game-1",
		VideoID:                 "video-1",
		SourcePath:              "broadcast/game-1/video-1_recording.mp4",
		DestinationPath:         "clips/" + clipID + ".mp4",
		StartOffset:             "5:30",
		EndOffset:               "5:45",
		TTLSecondsAfterFinished: 3600,
		BackoffLimit:            3,
	}
}
