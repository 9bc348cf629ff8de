package worker_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"clipd/internal/cliprecord"
	"clipd/internal/config"
	"clipd/internal/services"
	"clipd/internal/storage"
	"clipd/internal/testsupport"
	"clipd/internal/worker"
)

type stubTranscoder struct {
	err      error
	requests []worker.ExtractRequest
}

func (s *stubTranscoder) Extract(_ context.Context, req worker.ExtractRequest) error {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(req.OutputPath, []byte("clip-bytes"), 0o644)
}

func newHarness(t *testing.T) (*config.Config, *storage.FakeStore, *cliprecord.Store, *stubTranscoder) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	records, err := cliprecord.Open(cfg)
	if err != nil {
		t.Fatalf("cliprecord.Open: %v", err)
	}
	t.Cleanup(func() { records.Close() })
	return cfg, storage.NewFakeStore(), records, &stubTranscoder{}
}

func assignment() worker.Assignment {
	return worker.Assignment{
		JobName:         "clip-11112222",
		ClipID:          "11112222-3333-4444-5555-666677778888",
		SourcePath:      "broadcast/game-1/video-1_recording.mp4",
		DestinationPath: "clips/11112222-3333-4444-5555-666677778888.mp4",
		StartOffset:     "5:30",
		EndOffset:       "5:45",
	}
}

func TestRunHappyPath(t *testing.T) {
	cfg, store, records, transcoder := newHarness(t)
	a := assignment()
	store.Put(a.SourcePath, []byte("source-bytes"))

	w := worker.New(cfg, store, records, transcoder, nil)
	if err := w.Run(context.Background(), a); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(transcoder.requests) != 1 {
		t.Fatalf("expected one transcode, got %d", len(transcoder.requests))
	}
	req := transcoder.requests[0]
	if req.StartSeconds != 330 || req.EndSeconds != 345 {
		t.Fatalf("unexpected cut range: %v..%v", req.StartSeconds, req.EndSeconds)
	}

	if _, ok := store.Object(a.DestinationPath); !ok {
		t.Fatal("expected clip uploaded to destination path")
	}

	rec, err := records.Get(context.Background(), a.ClipID)
	if err != nil {
		t.Fatalf("Get record: %v", err)
	}
	if rec.Status != cliprecord.StatusCompleted || rec.DestinationPath != a.DestinationPath {
		t.Fatalf("unexpected record: %#v", rec)
	}

	// Workspace must be cleaned up after a successful run.
	entries, err := os.ReadDir(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty work dir, found %d entries", len(entries))
	}
}

func TestRunRerunProducesIdenticalOutput(t *testing.T) {
	cfg, store, records, transcoder := newHarness(t)
	a := assignment()
	store.Put(a.SourcePath, []byte("source-bytes"))

	w := worker.New(cfg, store, records, transcoder, nil)
	if err := w.Run(context.Background(), a); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first, ok := store.Object(a.DestinationPath)
	if !ok {
		t.Fatal("expected clip uploaded on first run")
	}
	first = append([]byte(nil), first...)

	if err := w.Run(context.Background(), a); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second, _ := store.Object(a.DestinationPath)
	if !bytes.Equal(first, second) {
		t.Fatalf("rerun output differs: %q vs %q", first, second)
	}

	if len(store.Uploads) != 2 {
		t.Fatalf("expected two uploads, got %d", len(store.Uploads))
	}
	rec, err := records.Get(context.Background(), a.ClipID)
	if err != nil {
		t.Fatalf("Get record: %v", err)
	}
	if rec.Status != cliprecord.StatusCompleted {
		t.Fatalf("record status = %s, want completed", rec.Status)
	}
}

func TestRunRejectsBadRangeBeforeDownload(t *testing.T) {
	cfg, store, records, transcoder := newHarness(t)
	a := assignment()
	a.EndOffset = "5:30"

	w := worker.New(cfg, store, records, transcoder, nil)
	err := w.Run(context.Background(), a)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.Downloads) != 0 {
		t.Fatal("bad range must fail before any download")
	}

	rec, err := records.Get(context.Background(), a.ClipID)
	if err != nil {
		t.Fatalf("Get record: %v", err)
	}
	if rec.Status != cliprecord.StatusFailed {
		t.Fatalf("record status = %s, want failed", rec.Status)
	}
	if !strings.Contains(rec.FailureDetail, "ValidationError") {
		t.Fatalf("failure detail missing classification: %q", rec.FailureDetail)
	}
}

func TestRunMissingSource(t *testing.T) {
	cfg, store, records, transcoder := newHarness(t)
	a := assignment()

	w := worker.New(cfg, store, records, transcoder, nil)
	err := w.Run(context.Background(), a)
	if !errors.Is(err, services.ErrSourceNotFound) {
		t.Fatalf("expected source-not-found, got %v", err)
	}

	rec, recErr := records.Get(context.Background(), a.ClipID)
	if recErr != nil {
		t.Fatalf("Get record: %v", recErr)
	}
	if rec.Status != cliprecord.StatusFailed || !strings.Contains(rec.FailureDetail, "SourceNotFound") {
		t.Fatalf("unexpected record: %#v", rec)
	}

	// Workspace must be cleaned up on failure as well.
	entries, err := os.ReadDir(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty work dir, found %d entries", len(entries))
	}
}

func TestRunTranscodeFailure(t *testing.T) {
	cfg, store, records, transcoder := newHarness(t)
	a := assignment()
	store.Put(a.SourcePath, []byte("source-bytes"))
	transcoder.err = services.Wrap(services.ErrTranscode, "worker", "transcode", "ffmpeg failed: exit status 1", nil)

	w := worker.New(cfg, store, records, transcoder, nil)
	if err := w.Run(context.Background(), a); !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected transcode error, got %v", err)
	}
	if len(store.Uploads) != 0 {
		t.Fatal("failed transcode must not upload")
	}

	rec, err := records.Get(context.Background(), a.ClipID)
	if err != nil {
		t.Fatalf("Get record: %v", err)
	}
	if rec.Status != cliprecord.StatusFailed || !strings.Contains(rec.FailureDetail, "TranscodeError") {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestAssignmentFromEnv(t *testing.T) {
	t.Setenv("CLIP_ID", "clip-123")
	t.Setenv("VIDEO_PATH", "broadcast/g/v_rec.mp4")
	t.Setenv("CLIP_PATH", "clips/clip-123.mp4")
	t.Setenv("START_TIME", "1:00")
	t.Setenv("END_TIME", "1:30")
	t.Setenv("CLIPD_JOB_NAME", "clip-clip-123")

	a, err := worker.AssignmentFromEnv()
	if err != nil {
		t.Fatalf("AssignmentFromEnv: %v", err)
	}
	if a.ClipID != "clip-123" || a.JobName != "clip-clip-123" || a.StartOffset != "1:00" {
		t.Fatalf("unexpected assignment: %#v", a)
	}
}

func TestAssignmentFromEnvMissingFields(t *testing.T) {
	t.Setenv("CLIP_ID", "clip-123")
	t.Setenv("VIDEO_PATH", "")
	t.Setenv("CLIP_PATH", "clips/clip-123.mp4")
	t.Setenv("START_TIME", "1:00")
	t.Setenv("END_TIME", "")

	_, err := worker.AssignmentFromEnv()
	if err == nil {
		t.Fatal("expected error for incomplete environment")
	}
	if !strings.Contains(err.Error(), "VIDEO_PATH") || !strings.Contains(err.Error(), "END_TIME") {
		t.Fatalf("unexpected error: %v", err)
	}
}
