package services_test

import (
	"errors"
	"strings"
	"testing"

	"clipd/internal/services"
)

func TestWrapTagsMarkerAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrUpload, "worker", "upload clip", "put object failed", cause)
	if !errors.Is(err, services.ErrUpload) {
		t.Fatal("expected ErrUpload marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause")
	}
	if !strings.Contains(err.Error(), "worker: upload clip: put object failed") {
		t.Fatalf("unexpected message: %q", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "controller", "launch unit", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected transient marker for nil marker")
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{services.Wrap(services.ErrSourceNotFound, "worker", "download", "missing object", nil), "SourceNotFound"},
		{services.Wrap(services.ErrTranscode, "worker", "ffmpeg", "exit status 1", nil), "TranscodeError"},
		{services.Wrap(services.ErrUpload, "worker", "upload", "io failure", nil), "UploadError"},
		{services.Wrap(services.ErrValidation, "api", "submit", "end before start", nil), "ValidationError"},
		{services.Wrap(services.ErrTimeout, "executor", "deadline", "unit exceeded deadline", nil), "Timeout"},
		{errors.New("unclassified"), "Transient"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if services.IsRetryable(services.Wrap(services.ErrValidation, "api", "submit", "bad spec", nil)) {
		t.Fatal("validation errors must not be retryable")
	}
	if services.IsRetryable(nil) {
		t.Fatal("nil error must not be retryable")
	}
	if !services.IsRetryable(services.Wrap(services.ErrSourceNotFound, "worker", "download", "missing", nil)) {
		t.Fatal("source-not-found consumes retry attempts")
	}
}
