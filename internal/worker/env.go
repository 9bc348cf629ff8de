package worker

import (
	"fmt"
	"os"
	"strings"

	"clipd/internal/executor"
)

// Assignment is one extraction handed to a worker process through its
// environment.
type Assignment struct {
	JobName         string
	ClipID          string
	SourcePath      string
	DestinationPath string
	StartOffset     string
	EndOffset       string
}

// AssignmentFromEnv decodes the worker contract from the process
// environment. Every field except the job name is required.
func AssignmentFromEnv() (Assignment, error) {
	a := Assignment{
		JobName:         os.Getenv(executor.EnvJobName),
		ClipID:          strings.TrimSpace(os.Getenv(executor.EnvClipID)),
		SourcePath:      strings.TrimSpace(os.Getenv(executor.EnvVideoPath)),
		DestinationPath: strings.TrimSpace(os.Getenv(executor.EnvClipPath)),
		StartOffset:     strings.TrimSpace(os.Getenv(executor.EnvStartTime)),
		EndOffset:       strings.TrimSpace(os.Getenv(executor.EnvEndTime)),
	}
	var missing []string
	for _, field := range []struct {
		env   string
		value string
	}{
		{executor.EnvClipID, a.ClipID},
		{executor.EnvVideoPath, a.SourcePath},
		{executor.EnvClipPath, a.DestinationPath},
		{executor.EnvStartTime, a.StartOffset},
		{executor.EnvEndTime, a.EndOffset},
	} {
		if field.value == "" {
			missing = append(missing, field.env)
		}
	}
	if len(missing) > 0 {
		return Assignment{}, fmt.Errorf("incomplete worker environment: missing %s", strings.Join(missing, ", "))
	}
	return a, nil
}
