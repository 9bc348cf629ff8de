// Package worker implements the one-shot clip extraction process. A worker
// handles exactly one assignment: download the source recording, cut the
// clip with ffmpeg, upload the result, and flip the clip record. Success or
// failure is reported back to the controller through the process exit code.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipd/internal/cliprecord"
	"clipd/internal/config"
	"clipd/internal/logging"
	"clipd/internal/services"
	"clipd/internal/storage"
	"clipd/internal/timecode"
)

// Worker extracts a single clip per process invocation.
type Worker struct {
	cfg        *config.Config
	store      storage.Store
	records    *cliprecord.Store
	transcoder Transcoder
	logger     *slog.Logger
}

// New assembles a worker from its collaborators.
func New(cfg *config.Config, store storage.Store, records *cliprecord.Store, transcoder Transcoder, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{
		cfg:        cfg,
		store:      store,
		records:    records,
		transcoder: transcoder,
		logger:     logger.With(logging.FieldComponent, "worker"),
	}
}

// Run performs the full extraction for one assignment. Any error marks the
// clip record failed with a classified detail before returning; the caller
// turns the error into a nonzero exit code.
func (w *Worker) Run(ctx context.Context, a Assignment) error {
	ctx = services.WithClipID(ctx, a.ClipID)
	logger := w.logger.With(logging.FieldClipID, a.ClipID)
	if a.JobName != "" {
		logger = logger.With(logging.FieldJob, a.JobName)
	}

	if err := w.extract(ctx, a, logger); err != nil {
		detail := services.Details(err).Message
		if detail == "" {
			detail = err.Error()
		}
		kind := services.Kind(err)
		if markErr := w.records.MarkFailed(ctx, a.ClipID, fmt.Sprintf("%s: %s", kind, detail)); markErr != nil {
			logger.Error("record failure status", logging.Error(markErr))
		}
		logger.Error("clip extraction failed",
			logging.String(logging.FieldErrorHint, kind),
			logging.Error(err))
		return err
	}

	logger.Info("clip extraction completed",
		logging.String("destination", a.DestinationPath))
	return nil
}

func (w *Worker) extract(ctx context.Context, a Assignment, logger *slog.Logger) error {
	// Reject a bad offset range before touching the network.
	startSeconds, endSeconds, err := timecode.ValidateRange(a.StartOffset, a.EndOffset)
	if err != nil {
		return services.Wrap(services.ErrValidation, "worker", "validate assignment", err.Error(), nil)
	}
	if err := storage.ValidateObjectPath(a.SourcePath); err != nil {
		return services.Wrap(services.ErrValidation, "worker", "validate assignment", err.Error(), nil)
	}
	if err := storage.ValidateObjectPath(a.DestinationPath); err != nil {
		return services.Wrap(services.ErrValidation, "worker", "validate assignment", err.Error(), nil)
	}

	if err := w.records.MarkProcessing(ctx, a.ClipID); err != nil {
		return services.Wrap(services.ErrTransient, "worker", "mark processing", "update clip record", err)
	}

	if err := os.MkdirAll(w.cfg.Paths.WorkDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "worker", "prepare workspace", "create work directory", err)
	}
	workDir, err := os.MkdirTemp(w.cfg.Paths.WorkDir, "clip-"+sanitize(a.ClipID)+"-")
	if err != nil {
		return services.Wrap(services.ErrTransient, "worker", "prepare workspace", "create temp directory", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(workDir); removeErr != nil {
			logger.Warn("remove work directory", logging.Error(removeErr))
		}
	}()

	sourceLocal := filepath.Join(workDir, "source"+filepath.Ext(a.SourcePath))
	clipLocal := filepath.Join(workDir, "clip.mp4")

	logger.Info("downloading source recording", logging.String("object", a.SourcePath))
	if err := w.store.Download(ctx, a.SourcePath, sourceLocal); err != nil {
		return err
	}

	logger.Info("extracting clip",
		logging.String("start", a.StartOffset),
		logging.String("end", a.EndOffset))
	if err := w.transcoder.Extract(ctx, ExtractRequest{
		InputPath:    sourceLocal,
		OutputPath:   clipLocal,
		StartSeconds: startSeconds,
		EndSeconds:   endSeconds,
	}); err != nil {
		return err
	}

	if info, err := os.Stat(clipLocal); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrTranscode, "worker", "transcode",
			"ffmpeg produced no output", err)
	}

	logger.Info("uploading clip", logging.String("object", a.DestinationPath))
	if err := w.store.Upload(ctx, clipLocal, a.DestinationPath); err != nil {
		return err
	}

	if err := w.records.MarkCompleted(ctx, a.ClipID, a.DestinationPath); err != nil {
		return services.Wrap(services.ErrTransient, "worker", "mark completed", "update clip record", err)
	}
	return nil
}

func sanitize(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, value)
}
