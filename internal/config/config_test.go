package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipd/internal/config"
)

func TestLoadDefaultsUseEnvCredentialsAndExpandPaths(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY", "test-access")
	t.Setenv("MINIO_SECRET_KEY", "test-secret")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "clipd", "data")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7519" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Storage.AccessKey != "test-access" {
		t.Fatalf("expected access key from env, got %q", cfg.Storage.AccessKey)
	}
	if cfg.Storage.SecretKey != "test-secret" {
		t.Fatalf("expected secret key from env, got %q", cfg.Storage.SecretKey)
	}
	if cfg.ClipDB.Path != filepath.Join(wantData, "clips.db") {
		t.Fatalf("unexpected clip db path: %q", cfg.ClipDB.Path)
	}
	if cfg.Jobs.DefaultBackoffLimit != 3 {
		t.Fatalf("unexpected default backoff limit: %d", cfg.Jobs.DefaultBackoffLimit)
	}
	if cfg.Jobs.DefaultTTLSeconds != 3600 {
		t.Fatalf("unexpected default ttl: %d", cfg.Jobs.DefaultTTLSeconds)
	}
	if cfg.FFmpeg.VideoCodec != "h264_nvenc" {
		t.Fatalf("unexpected video codec: %q", cfg.FFmpeg.VideoCodec)
	}
}

func TestLoadParsesExplicitFile(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY", "")
	t.Setenv("MINIO_SECRET_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		`work_dir = "` + filepath.Join(dir, "work") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[storage]",
		`endpoint = "minio.local:9000"`,
		`access_key = "ak"`,
		`secret_key = "sk"`,
		`bucket = "videos"`,
		"[jobs]",
		"default_backoff_limit = 5",
		"retry_backoff_seconds = 2",
		"retry_backoff_max_seconds = 60",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Storage.Endpoint != "minio.local:9000" {
		t.Fatalf("unexpected endpoint: %q", cfg.Storage.Endpoint)
	}
	if cfg.Jobs.DefaultBackoffLimit != 5 {
		t.Fatalf("unexpected backoff limit: %d", cfg.Jobs.DefaultBackoffLimit)
	}
	// Unset values fall back to defaults.
	if cfg.Jobs.Reconcilers != 4 {
		t.Fatalf("unexpected reconcilers: %d", cfg.Jobs.Reconcilers)
	}
	if cfg.FFmpeg.Binary != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpeg.Binary)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantSub string
	}{
		{
			name:    "missing bucket",
			mutate:  func(c *config.Config) { c.Storage.Bucket = "" },
			wantSub: "storage.bucket",
		},
		{
			name:    "missing access key",
			mutate:  func(c *config.Config) { c.Storage.AccessKey = "" },
			wantSub: "storage.access_key",
		},
		{
			name:    "backoff cap below base",
			mutate:  func(c *config.Config) { c.Jobs.RetryBackoffSeconds = 60; c.Jobs.RetryBackoffMaxSeconds = 30 },
			wantSub: "retry_backoff_max_seconds",
		},
		{
			name:    "bad log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "yaml" },
			wantSub: "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage.AccessKey = "ak"
			cfg.Storage.SecretKey = "sk"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q missing %q", err, tc.wantSub)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
}
