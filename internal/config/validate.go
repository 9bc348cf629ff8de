package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set")
	}
	if strings.TrimSpace(c.Storage.AccessKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/clipd/config.toml"
		}
		return fmt.Errorf("storage.access_key is required. Set MINIO_ACCESS_KEY env var or edit %s (create with 'clipd config init')", defaultPath)
	}
	if strings.TrimSpace(c.Storage.SecretKey) == "" {
		return errors.New("storage.secret_key is required (or set MINIO_SECRET_KEY)")
	}
	return ensurePositiveMap(map[string]int{
		"storage.download_timeout": c.Storage.DownloadTimeout,
		"storage.upload_timeout":   c.Storage.UploadTimeout,
	})
}

func (c *Config) validateFFmpeg() error {
	if strings.TrimSpace(c.FFmpeg.Binary) == "" {
		return errors.New("ffmpeg.binary must be set")
	}
	if strings.TrimSpace(c.FFmpeg.VideoCodec) == "" {
		return errors.New("ffmpeg.video_codec must be set")
	}
	return nil
}

func (c *Config) validateJobs() error {
	if err := ensurePositiveMap(map[string]int{
		"jobs.default_ttl_seconds":       c.Jobs.DefaultTTLSeconds,
		"jobs.default_backoff_limit":     c.Jobs.DefaultBackoffLimit,
		"jobs.retry_backoff_seconds":     c.Jobs.RetryBackoffSeconds,
		"jobs.retry_backoff_max_seconds": c.Jobs.RetryBackoffMaxSeconds,
		"jobs.resync_interval_seconds":   c.Jobs.ResyncIntervalSeconds,
		"jobs.reconcilers":               c.Jobs.Reconcilers,
		"jobs.unit_deadline_seconds":     c.Jobs.UnitDeadlineSeconds,
	}); err != nil {
		return err
	}
	if c.Jobs.RetryBackoffMaxSeconds < c.Jobs.RetryBackoffSeconds {
		return errors.New("jobs.retry_backoff_max_seconds must be at least jobs.retry_backoff_seconds")
	}
	if strings.TrimSpace(c.Jobs.WorkerBinary) == "" {
		return errors.New("jobs.worker_binary must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
