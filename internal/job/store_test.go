package job_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipd/internal/job"
	"clipd/internal/testsupport"
)

func TestCreateIsIdempotentByName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	spec := testsupport.ClipSpec("3f8a1c20-aaaa-bbbb-cccc-000000000001")

	first, created, err := store.Create(ctx, spec)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created {
		t.Fatal("expected first Create to insert")
	}
	if first.Name != job.NameForClip(spec.ClipID) {
		t.Fatalf("unexpected name %q", first.Name)
	}
	if first.Phase != job.PhasePending {
		t.Fatalf("new job must be Pending, got %s", first.Phase)
	}

	second, created, err := store.Create(ctx, spec)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if created {
		t.Fatal("expected second Create to return existing job")
	}
	if second.Name != first.Name || second.CreatedAt != first.CreatedAt {
		t.Fatalf("second Create returned a different job: %#v", second)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one job, got %d", len(all))
	}
}

func TestUpdatePersistsStatusFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	j := testsupport.NewJob(t, store, testsupport.ClipSpec("clip-update"))

	started := time.Now().UTC().Truncate(time.Millisecond)
	retry := started.Add(10 * time.Second)
	j.Phase = job.PhaseRunning
	j.StartedAt = &started
	j.Attempts = 2
	j.FailureReason = "transcode exit status 1"
	j.RetryAt = &retry

	if err := store.Update(ctx, j); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByName(ctx, j.Name)
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if fetched.Phase != job.PhaseRunning {
		t.Fatalf("phase = %s, want Running", fetched.Phase)
	}
	if fetched.StartedAt == nil || !fetched.StartedAt.Equal(started) {
		t.Fatalf("startedAt = %v, want %v", fetched.StartedAt, started)
	}
	if fetched.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", fetched.Attempts)
	}
	if fetched.FailureReason != "transcode exit status 1" {
		t.Fatalf("unexpected failure reason %q", fetched.FailureReason)
	}
	if fetched.RetryAt == nil || !fetched.RetryAt.Equal(retry) {
		t.Fatalf("retryAt = %v, want %v", fetched.RetryAt, retry)
	}

	// Spec fields must survive status updates untouched.
	if fetched.Spec != j.Spec {
		t.Fatalf("spec changed across update: %#v", fetched.Spec)
	}
}

func TestListFiltersByPhase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	pending := testsupport.NewJob(t, store, testsupport.ClipSpec("clip-a"))
	running := testsupport.NewJob(t, store, testsupport.ClipSpec("clip-b"))
	done := testsupport.NewJob(t, store, testsupport.ClipSpec("clip-c"))

	running.Phase = job.PhaseRunning
	if err := store.Update(ctx, running); err != nil {
		t.Fatalf("Update running: %v", err)
	}
	done.MarkSucceeded(time.Now())
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update done: %v", err)
	}

	active, err := store.List(ctx, job.PhasePending, job.PhaseRunning)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active jobs, got %d", len(active))
	}
	names := map[string]bool{active[0].Name: true, active[1].Name: true}
	if !names[pending.Name] || !names[running.Name] {
		t.Fatalf("unexpected active set: %v", names)
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	j := testsupport.NewJob(t, store, testsupport.ClipSpec("clip-del"))

	deleted, err := store.Delete(ctx, j.Name)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected Delete to remove the job")
	}

	deleted, err = store.Delete(ctx, j.Name)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if deleted {
		t.Fatal("expected second Delete to be a no-op")
	}

	if _, err := store.GetByName(ctx, j.Name); !errors.Is(err, job.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExpiredHonorsTTL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	spec := testsupport.ClipSpec("clip-ttl")
	spec.TTLSecondsAfterFinished = 60
	j := testsupport.NewJob(t, store, spec)

	finished := time.Now().UTC().Add(-2 * time.Minute)
	j.Phase = job.PhaseSucceeded
	j.CompletedAt = &finished
	if err := store.Update(ctx, j); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh := testsupport.NewJob(t, store, testsupport.ClipSpec("clip-fresh"))
	fresh.MarkSucceeded(time.Now())
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update fresh: %v", err)
	}

	expired, err := store.Expired(ctx, time.Now())
	if err != nil {
		t.Fatalf("Expired failed: %v", err)
	}
	if len(expired) != 1 || expired[0].Name != j.Name {
		t.Fatalf("unexpected expired set: %#v", expired)
	}
}

func TestSummaryCountsPhases(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewJob(t, store, testsupport.ClipSpec("clip-1"))
	testsupport.NewJob(t, store, testsupport.ClipSpec("clip-2"))
	failed := testsupport.NewJob(t, store, testsupport.ClipSpec("clip-3"))
	failed.MarkFailed("backoff limit exceeded", time.Now())
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed job: %v", err)
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Total != 3 || summary.Pending != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}
