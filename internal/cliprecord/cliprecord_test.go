package cliprecord_test

import (
	"context"
	"errors"
	"testing"

	"clipd/internal/cliprecord"
	"clipd/internal/testsupport"
)

func openStore(t *testing.T) *cliprecord.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := cliprecord.Open(cfg)
	if err != nil {
		t.Fatalf("cliprecord.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLifecycleTransitions(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.MarkProcessing(ctx, "clip-1"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	rec, err := store.Get(ctx, "clip-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != cliprecord.StatusProcessing {
		t.Fatalf("status = %s, want processing", rec.Status)
	}

	if err := store.MarkCompleted(ctx, "clip-1", "clips/clip-1.mp4"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	rec, err = store.Get(ctx, "clip-1")
	if err != nil {
		t.Fatalf("Get after complete: %v", err)
	}
	if rec.Status != cliprecord.StatusCompleted || rec.DestinationPath != "clips/clip-1.mp4" {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestMarkFailedRecordsDetail(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.MarkFailed(ctx, "clip-2", "source object missing"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	rec, err := store.Get(ctx, "clip-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != cliprecord.StatusFailed || rec.FailureDetail != "source object missing" {
		t.Fatalf("unexpected record: %#v", rec)
	}

	// A later retry that starts processing clears the stale detail.
	if err := store.MarkProcessing(ctx, "clip-2"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	rec, err = store.Get(ctx, "clip-2")
	if err != nil {
		t.Fatalf("Get after retry: %v", err)
	}
	if rec.Status != cliprecord.StatusProcessing || rec.FailureDetail != "" {
		t.Fatalf("expected cleared failure detail, got %#v", rec)
	}
}

func TestGetUnknownClip(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, cliprecord.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
