package job

import (
	"strings"
	"time"
)

// Phase represents the lifecycle of a clip extraction job.
type Phase string

const (
	PhasePending   Phase = "Pending"
	PhaseRunning   Phase = "Running"
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
)

var allPhases = []Phase{PhasePending, PhaseRunning, PhaseSucceeded, PhaseFailed}

// AllPhases returns the ordered list of known phases.
func AllPhases() []Phase {
	cp := make([]Phase, len(allPhases))
	copy(cp, allPhases)
	return cp
}

// ParsePhase converts a string into a known Phase.
func ParsePhase(value string) (Phase, bool) {
	trimmed := strings.TrimSpace(value)
	for _, phase := range allPhases {
		if strings.EqualFold(trimmed, string(phase)) {
			return phase, true
		}
	}
	return "", false
}

// Terminal reports whether the phase is final. Terminal jobs never transition
// again; resubmission means creating a new job under a new name.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// Spec describes one desired clip extraction. Spec fields are immutable once
// the job is created.
type Spec struct {
	ClipID                  string
	GameID                  string
	VideoID                 string
	SourcePath              string
	DestinationPath         string
	StartOffset             string
	EndOffset               string
	TTLSecondsAfterFinished int
	BackoffLimit            int
}

// Job is one persisted clip extraction job: an immutable spec plus status
// fields owned exclusively by the controller.
type Job struct {
	Name string
	Spec Spec

	Phase         Phase
	StartedAt     *time.Time
	CompletedAt   *time.Time
	Attempts      int
	FailureReason string
	RetryAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NameForClip derives the stable job name for a clip identifier. Submitting
// the same clip twice yields the same name, which the store treats as
// already-created rather than duplicate work.
func NameForClip(clipID string) string {
	return "clip-" + strings.ToLower(strings.TrimSpace(clipID))
}

// Active reports whether the job still needs reconciliation toward a
// terminal phase.
func (j *Job) Active() bool {
	return j != nil && !j.Phase.Terminal()
}

// RetryDue reports whether a pending retry wait has elapsed at the given time.
func (j *Job) RetryDue(now time.Time) bool {
	if j.RetryAt == nil {
		return true
	}
	return !now.Before(*j.RetryAt)
}

// Expired reports whether a terminal job has outlived its retention TTL.
func (j *Job) Expired(now time.Time) bool {
	if !j.Phase.Terminal() || j.CompletedAt == nil {
		return false
	}
	ttl := time.Duration(j.Spec.TTLSecondsAfterFinished) * time.Second
	return !now.Before(j.CompletedAt.Add(ttl))
}

// MarkFailed moves the job to the terminal Failed phase.
func (j *Job) MarkFailed(reason string, now time.Time) {
	now = now.UTC()
	j.Phase = PhaseFailed
	j.FailureReason = reason
	j.CompletedAt = &now
	j.RetryAt = nil
}

// MarkSucceeded moves the job to the terminal Succeeded phase.
func (j *Job) MarkSucceeded(now time.Time) {
	now = now.UTC()
	j.Phase = PhaseSucceeded
	j.FailureReason = ""
	j.CompletedAt = &now
	j.RetryAt = nil
}

// HealthSummary describes aggregated job counts per phase.
type HealthSummary struct {
	Total     int
	Pending   int
	Running   int
	Succeeded int
	Failed    int
}
