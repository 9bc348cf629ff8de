package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	if err := c.normalizeClipDB(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeJobs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.WorkDir, err = ExpandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	if c.Storage.AccessKey == "" {
		if value, ok := os.LookupEnv("MINIO_ACCESS_KEY"); ok {
			c.Storage.AccessKey = value
		}
	}
	if c.Storage.SecretKey == "" {
		if value, ok := os.LookupEnv("MINIO_SECRET_KEY"); ok {
			c.Storage.SecretKey = value
		}
	}
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.ClipsPrefix = strings.Trim(strings.TrimSpace(c.Storage.ClipsPrefix), "/")
	if c.Storage.ClipsPrefix == "" {
		c.Storage.ClipsPrefix = defaultClipsPrefix
	}
	if c.Storage.DownloadTimeout <= 0 {
		c.Storage.DownloadTimeout = defaultDownloadTimeout
	}
	if c.Storage.UploadTimeout <= 0 {
		c.Storage.UploadTimeout = defaultUploadTimeout
	}
}

func (c *Config) normalizeClipDB() error {
	trimmed := strings.TrimSpace(c.ClipDB.Path)
	if trimmed == "" {
		// Shared database defaults to living alongside the job database.
		c.ClipDB.Path = filepath.Join(c.Paths.DataDir, "clips.db")
		return nil
	}
	expanded, err := ExpandPath(trimmed)
	if err != nil {
		return fmt.Errorf("clip_db.path: %w", err)
	}
	c.ClipDB.Path = expanded
	return nil
}

func (c *Config) normalizeFFmpeg() {
	if strings.TrimSpace(c.FFmpeg.Binary) == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.HardwareAccel = strings.TrimSpace(c.FFmpeg.HardwareAccel)
	if strings.TrimSpace(c.FFmpeg.VideoCodec) == "" {
		c.FFmpeg.VideoCodec = defaultVideoCodec
	}
	if strings.TrimSpace(c.FFmpeg.Preset) == "" {
		c.FFmpeg.Preset = defaultFFmpegPreset
	}
	if strings.TrimSpace(c.FFmpeg.AudioCodec) == "" {
		c.FFmpeg.AudioCodec = defaultAudioCodec
	}
	if strings.TrimSpace(c.FFmpeg.AudioBitrate) == "" {
		c.FFmpeg.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeJobs() {
	if c.Jobs.DefaultTTLSeconds <= 0 {
		c.Jobs.DefaultTTLSeconds = defaultTTLSeconds
	}
	if c.Jobs.DefaultBackoffLimit <= 0 {
		c.Jobs.DefaultBackoffLimit = defaultBackoffLimit
	}
	if c.Jobs.RetryBackoffSeconds <= 0 {
		c.Jobs.RetryBackoffSeconds = defaultRetryBackoffSeconds
	}
	if c.Jobs.RetryBackoffMaxSeconds <= 0 {
		c.Jobs.RetryBackoffMaxSeconds = defaultRetryBackoffMaxSeconds
	}
	if c.Jobs.ResyncIntervalSeconds <= 0 {
		c.Jobs.ResyncIntervalSeconds = defaultResyncIntervalSeconds
	}
	if c.Jobs.Reconcilers <= 0 {
		c.Jobs.Reconcilers = defaultReconcilers
	}
	if c.Jobs.UnitDeadlineSeconds <= 0 {
		c.Jobs.UnitDeadlineSeconds = defaultUnitDeadlineSeconds
	}
	if strings.TrimSpace(c.Jobs.WorkerBinary) == "" {
		c.Jobs.WorkerBinary = defaultWorkerBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
