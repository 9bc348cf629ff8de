package api

import (
	"context"
	"fmt"
	"strings"

	"clipd/internal/cliprecord"
	"clipd/internal/config"
	"clipd/internal/job"
	"clipd/internal/services"
	"clipd/internal/storage"
	"clipd/internal/timecode"
)

// Reconciler is the controller surface the API layer drives: immediate
// reconciles after writes and cancellation on delete.
type Reconciler interface {
	Enqueue(name string)
	Cancel(ctx context.Context, name string) (bool, error)
}

// JobService validates submissions and exposes job operations returning
// API DTOs.
type JobService struct {
	cfg        *config.Config
	store      *job.Store
	records    *cliprecord.Store
	reconciler Reconciler
}

// NewJobService constructs a JobService.
func NewJobService(cfg *config.Config, store *job.Store, records *cliprecord.Store, reconciler Reconciler) *JobService {
	return &JobService{cfg: cfg, store: store, records: records, reconciler: reconciler}
}

// Submit validates a request, applies defaults, and creates the job.
// Submission is idempotent on the clip identifier.
func (s *JobService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	spec, err := s.specFromRequest(req)
	if err != nil {
		return nil, err
	}

	created, inserted, err := s.store.Create(ctx, spec)
	if err != nil {
		return nil, err
	}
	if inserted {
		// Seed the clip record so readers see "pending" immediately.
		if err := s.records.Ensure(ctx, spec.ClipID); err != nil {
			return nil, err
		}
	}
	if s.reconciler != nil {
		s.reconciler.Enqueue(created.Name)
	}

	return &SubmitResponse{Job: FromJob(created), Created: inserted}, nil
}

// List returns jobs filtered by phase names. Unknown phase names are
// rejected.
func (s *JobService) List(ctx context.Context, phaseNames ...string) ([]JobView, error) {
	var phases []job.Phase
	for _, name := range phaseNames {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		phase, ok := job.ParsePhase(trimmed)
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "api", "list jobs",
				fmt.Sprintf("unknown phase %q", name), nil)
		}
		phases = append(phases, phase)
	}
	jobs, err := s.store.List(ctx, phases...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Describe fetches a single job by name.
func (s *JobService) Describe(ctx context.Context, name string) (*JobView, error) {
	j, err := s.store.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	view := FromJob(j)
	return &view, nil
}

// Delete cancels and removes a job. It reports whether the job existed.
func (s *JobService) Delete(ctx context.Context, name string) (bool, error) {
	if s.reconciler != nil {
		return s.reconciler.Cancel(ctx, name)
	}
	return s.store.Delete(ctx, name)
}

// Summary aggregates job counts per phase.
func (s *JobService) Summary(ctx context.Context) (map[string]int, error) {
	summary, err := s.store.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return SummaryCounts(summary), nil
}

func (s *JobService) specFromRequest(req SubmitRequest) (job.Spec, error) {
	spec := job.Spec{
		ClipID:          strings.TrimSpace(req.ClipID),
		GameID:          strings.TrimSpace(req.GameID),
		VideoID:         strings.TrimSpace(req.VideoID),
		SourcePath:      strings.TrimSpace(req.SourcePath),
		DestinationPath: strings.TrimSpace(req.DestinationPath),
		StartOffset:     strings.TrimSpace(req.StartOffset),
		EndOffset:       strings.TrimSpace(req.EndOffset),
	}

	var missing []string
	if spec.ClipID == "" {
		missing = append(missing, "clipId")
	}
	if spec.GameID == "" {
		missing = append(missing, "gameId")
	}
	if spec.VideoID == "" {
		missing = append(missing, "videoId")
	}
	if spec.SourcePath == "" {
		missing = append(missing, "sourcePath")
	}
	if len(missing) > 0 {
		return job.Spec{}, services.Wrap(services.ErrValidation, "api", "submit",
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), nil)
	}

	if _, _, err := timecode.ValidateRange(spec.StartOffset, spec.EndOffset); err != nil {
		return job.Spec{}, services.Wrap(services.ErrValidation, "api", "submit", err.Error(), nil)
	}
	if err := storage.ValidateObjectPath(spec.SourcePath); err != nil {
		return job.Spec{}, services.Wrap(services.ErrValidation, "api", "submit", err.Error(), nil)
	}

	if spec.DestinationPath == "" {
		spec.DestinationPath = storage.ClipObjectPath(s.cfg.Storage.ClipsPrefix, spec.ClipID)
	}
	if err := storage.ValidateObjectPath(spec.DestinationPath); err != nil {
		return job.Spec{}, services.Wrap(services.ErrValidation, "api", "submit", err.Error(), nil)
	}

	spec.TTLSecondsAfterFinished = s.cfg.Jobs.DefaultTTLSeconds
	if req.TTLSecondsAfterFinished != nil {
		if *req.TTLSecondsAfterFinished < 0 {
			return job.Spec{}, services.Wrap(services.ErrValidation, "api", "submit",
				"ttlSecondsAfterFinished must not be negative", nil)
		}
		spec.TTLSecondsAfterFinished = *req.TTLSecondsAfterFinished
	}

	spec.BackoffLimit = s.cfg.Jobs.DefaultBackoffLimit
	if req.BackoffLimit != nil {
		if *req.BackoffLimit < 0 {
			return job.Spec{}, services.Wrap(services.ErrValidation, "api", "submit",
				"backoffLimit must not be negative", nil)
		}
		spec.BackoffLimit = *req.BackoffLimit
	}

	return spec, nil
}
