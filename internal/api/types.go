package api

import (
	"time"

	"clipd/internal/job"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SubmitRequest carries a clip extraction job submission.
type SubmitRequest struct {
	ClipID                  string `json:"clipId"`
	GameID                  string `json:"gameId"`
	VideoID                 string `json:"videoId"`
	SourcePath              string `json:"sourcePath"`
	DestinationPath         string `json:"destinationPath,omitempty"`
	StartOffset             string `json:"startOffset"`
	EndOffset               string `json:"endOffset"`
	TTLSecondsAfterFinished *int   `json:"ttlSecondsAfterFinished,omitempty"`
	BackoffLimit            *int   `json:"backoffLimit,omitempty"`
}

// SubmitResponse reports the job a submission resolved to. Created is false
// when an identical clip had already been submitted.
type SubmitResponse struct {
	Job     JobView `json:"job"`
	Created bool    `json:"created"`
}

// JobView describes a job resource in a transport-friendly format.
type JobView struct {
	Name                    string `json:"name"`
	ClipID                  string `json:"clipId"`
	GameID                  string `json:"gameId"`
	VideoID                 string `json:"videoId"`
	SourcePath              string `json:"sourcePath"`
	DestinationPath         string `json:"destinationPath"`
	StartOffset             string `json:"startOffset"`
	EndOffset               string `json:"endOffset"`
	TTLSecondsAfterFinished int    `json:"ttlSecondsAfterFinished"`
	BackoffLimit            int    `json:"backoffLimit"`
	Phase                   string `json:"phase"`
	Attempts                int    `json:"attempts"`
	FailureReason           string `json:"failureReason,omitempty"`
	StartedAt               string `json:"startedAt,omitempty"`
	CompletedAt             string `json:"completedAt,omitempty"`
	RetryAt                 string `json:"retryAt,omitempty"`
	CreatedAt               string `json:"createdAt,omitempty"`
	UpdatedAt               string `json:"updatedAt,omitempty"`
}

// JobListResponse wraps a collection of jobs for API responses.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// StatusResponse aggregates daemon runtime information for API consumers.
type StatusResponse struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	JobDBPath    string         `json:"jobDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Jobs         map[string]int `json:"jobs"`
}

// FromJob converts a job resource into its API view.
func FromJob(j *job.Job) JobView {
	if j == nil {
		return JobView{}
	}
	view := JobView{
		Name:                    j.Name,
		ClipID:                  j.Spec.ClipID,
		GameID:                  j.Spec.GameID,
		VideoID:                 j.Spec.VideoID,
		SourcePath:              j.Spec.SourcePath,
		DestinationPath:         j.Spec.DestinationPath,
		StartOffset:             j.Spec.StartOffset,
		EndOffset:               j.Spec.EndOffset,
		TTLSecondsAfterFinished: j.Spec.TTLSecondsAfterFinished,
		BackoffLimit:            j.Spec.BackoffLimit,
		Phase:                   string(j.Phase),
		Attempts:                j.Attempts,
		FailureReason:           j.FailureReason,
		CreatedAt:               formatTime(j.CreatedAt),
		UpdatedAt:               formatTime(j.UpdatedAt),
	}
	if j.StartedAt != nil {
		view.StartedAt = formatTime(*j.StartedAt)
	}
	if j.CompletedAt != nil {
		view.CompletedAt = formatTime(*j.CompletedAt)
	}
	if j.RetryAt != nil {
		view.RetryAt = formatTime(*j.RetryAt)
	}
	return view
}

// FromJobs converts a slice of jobs into API views.
func FromJobs(jobs []*job.Job) []JobView {
	views := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, FromJob(j))
	}
	return views
}

// SummaryCounts renders a health summary as a phase-keyed map.
func SummaryCounts(summary job.HealthSummary) map[string]int {
	return map[string]int{
		string(job.PhasePending):   summary.Pending,
		string(job.PhaseRunning):   summary.Running,
		string(job.PhaseSucceeded): summary.Succeeded,
		string(job.PhaseFailed):    summary.Failed,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(dateTimeFormat)
}
