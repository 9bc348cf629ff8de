package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrTranscode      = errors.New("transcode error")
	ErrUpload         = errors.New("upload error")
	ErrValidation     = errors.New("validation error")
	ErrConfiguration  = errors.New("configuration error")
	ErrTimeout        = errors.New("timeout")
	ErrTransient      = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Detail summarizes a classified error for logs and status fields.
type Detail struct {
	Kind    string
	Message string
	Cause   error
}

// Details extracts the classification and human-readable message from a
// wrapped error. The message is what propagates to the clip record's
// user-visible failure detail.
func Details(err error) Detail {
	if err == nil {
		return Detail{}
	}
	return Detail{
		Kind:    Kind(err),
		Message: strings.TrimSpace(err.Error()),
		Cause:   err,
	}
}

// Kind maps an error to its short classification name.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrSourceNotFound):
		return "SourceNotFound"
	case errors.Is(err, ErrTranscode):
		return "TranscodeError"
	case errors.Is(err, ErrUpload):
		return "UploadError"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrConfiguration):
		return "ConfigurationError"
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	default:
		return "Transient"
	}
}

// IsRetryable reports whether an error should consume a retry attempt rather
// than fail fast. Validation and configuration problems gain nothing from a
// rerun.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrValidation) && !errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
