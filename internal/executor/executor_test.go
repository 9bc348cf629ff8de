package executor_test

import (
	"errors"
	"strings"
	"testing"

	"clipd/internal/executor"
)

func unitSpec() executor.UnitSpec {
	return executor.UnitSpec{
		JobName:         "clip-abc",
		ClipID:          "abc",
		SourcePath:      "broadcast/g/v_rec.mp4",
		DestinationPath: "clips/abc.mp4",
		StartOffset:     "5:30",
		EndOffset:       "5:45",
	}
}

func TestUnitSpecEnviron(t *testing.T) {
	env := unitSpec().Environ("/etc/clipd/config.toml")
	want := []string{
		"CLIP_ID=abc",
		"VIDEO_PATH=broadcast/g/v_rec.mp4",
		"CLIP_PATH=clips/abc.mp4",
		"START_TIME=5:30",
		"END_TIME=5:45",
		"CLIPD_JOB_NAME=clip-abc",
		"CLIPD_CONFIG=/etc/clipd/config.toml",
	}
	joined := strings.Join(env, "\n")
	for _, entry := range want {
		if !strings.Contains(joined, entry) {
			t.Fatalf("environment missing %q", entry)
		}
	}
}

func TestUnitSpecValidate(t *testing.T) {
	if err := unitSpec().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spec := unitSpec()
	spec.ClipID = ""
	spec.EndOffset = " "
	err := spec.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "clip id") || !strings.Contains(err.Error(), "end offset") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestFakeLauncherIdempotentLaunch(t *testing.T) {
	fake := executor.NewFakeLauncher()
	spec := unitSpec()
	name := executor.UnitName(spec.JobName)

	if err := fake.Launch(spec); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := fake.Launch(spec); err != nil {
		t.Fatalf("second Launch: %v", err)
	}

	if live := fake.Live(); len(live) != 1 || live[0] != name {
		t.Fatalf("expected exactly one live unit, got %v", live)
	}
}

func TestFakeLauncherFinishAndRemove(t *testing.T) {
	fake := executor.NewFakeLauncher()
	spec := unitSpec()
	name := executor.UnitName(spec.JobName)

	if err := fake.Launch(spec); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := fake.Remove(name); err == nil {
		t.Fatal("expected Remove of a running unit to fail")
	}

	fake.Finish(name, executor.StateFailed, 3, "transcode failed")
	status, err := fake.Observe(name)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if status.State != executor.StateFailed || status.ExitCode != 3 {
		t.Fatalf("unexpected status: %#v", status)
	}

	if err := fake.Remove(name); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := fake.Observe(name); !errors.Is(err, executor.ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}
