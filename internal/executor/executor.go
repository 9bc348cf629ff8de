// Package executor launches and supervises execution units: isolated
// worker processes that each extract exactly one clip. The controller only
// sees the Launcher surface, so tests substitute a fake and the daemon uses
// the subprocess implementation.
package executor

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// UnitSpec carries everything a worker process needs to extract one clip.
// All fields travel to the unit through its environment.
type UnitSpec struct {
	JobName         string
	ClipID          string
	SourcePath      string
	DestinationPath string
	StartOffset     string
	EndOffset       string
	Deadline        time.Duration
}

// State describes where a unit is in its lifecycle.
type State string

const (
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Status is the observed condition of a unit.
type Status struct {
	Name       string
	State      State
	ExitCode   int
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// ErrUnitNotFound indicates no unit with the given name is known.
var ErrUnitNotFound = errors.New("execution unit not found")

// Launcher is the execution substrate surface the controller reconciles
// against.
type Launcher interface {
	// Launch starts a unit for the spec. Launching a name that already
	// has a live unit is a no-op, which keeps reconciliation idempotent.
	Launch(spec UnitSpec) error
	// Observe reports the unit's current status.
	Observe(name string) (Status, error)
	// Terminate stops a running unit and discards its record.
	Terminate(name string) error
	// Remove discards the record of a finished unit.
	Remove(name string) error
}

// UnitName derives the deterministic unit name for a job. Reconciling the
// same job twice always targets the same unit.
func UnitName(jobName string) string {
	return jobName
}

// Environment variable names forming the worker contract.
const (
	EnvClipID    = "CLIP_ID"
	EnvVideoPath = "VIDEO_PATH"
	EnvClipPath  = "CLIP_PATH"
	EnvStartTime = "START_TIME"
	EnvEndTime   = "END_TIME"
	EnvJobName   = "CLIPD_JOB_NAME"
	EnvConfig    = "CLIPD_CONFIG"
)

// Environ renders the spec as worker environment variables, appended to the
// parent environment. configPath tells the worker which config to load; it
// may be empty when the default search path applies.
func (s UnitSpec) Environ(configPath string) []string {
	env := append(os.Environ(),
		EnvClipID+"="+s.ClipID,
		EnvVideoPath+"="+s.SourcePath,
		EnvClipPath+"="+s.DestinationPath,
		EnvStartTime+"="+s.StartOffset,
		EnvEndTime+"="+s.EndOffset,
		EnvJobName+"="+s.JobName,
	)
	if configPath != "" {
		env = append(env, EnvConfig+"="+configPath)
	}
	return env
}

// Validate rejects specs that cannot form a complete worker environment.
func (s UnitSpec) Validate() error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"job name", s.JobName},
		{"clip id", s.ClipID},
		{"source path", s.SourcePath},
		{"destination path", s.DestinationPath},
		{"start offset", s.StartOffset},
		{"end offset", s.EndOffset},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unit spec missing %s", strings.Join(missing, ", "))
	}
	return nil
}
