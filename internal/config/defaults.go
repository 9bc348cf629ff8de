package config

const (
	defaultDataDir                = "~/.local/share/clipd/data"
	defaultWorkDir                = "~/.local/share/clipd/work"
	defaultLogDir                 = "~/.local/share/clipd/logs"
	defaultAPIBind                = "127.0.0.1:7519"
	defaultStorageEndpoint        = "127.0.0.1:9000"
	defaultStorageBucket          = "recordings"
	defaultClipsPrefix            = "clips"
	defaultDownloadTimeout        = 600
	defaultUploadTimeout          = 300
	defaultFFmpegBinary           = "ffmpeg"
	defaultHardwareAccel          = "cuda"
	defaultVideoCodec             = "h264_nvenc"
	defaultFFmpegPreset           = "fast"
	defaultAudioCodec             = "aac"
	defaultAudioBitrate           = "128k"
	defaultTTLSeconds             = 3600
	defaultBackoffLimit           = 3
	defaultRetryBackoffSeconds    = 10
	defaultRetryBackoffMaxSeconds = 300
	defaultResyncIntervalSeconds  = 15
	defaultReconcilers            = 4
	defaultUnitDeadlineSeconds    = 1800
	defaultWorkerBinary           = "clipd-worker"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Storage: Storage{
			Endpoint:        defaultStorageEndpoint,
			Bucket:          defaultStorageBucket,
			ClipsPrefix:     defaultClipsPrefix,
			DownloadTimeout: defaultDownloadTimeout,
			UploadTimeout:   defaultUploadTimeout,
		},
		FFmpeg: FFmpeg{
			Binary:        defaultFFmpegBinary,
			HardwareAccel: defaultHardwareAccel,
			VideoCodec:    defaultVideoCodec,
			Preset:        defaultFFmpegPreset,
			AudioCodec:    defaultAudioCodec,
			AudioBitrate:  defaultAudioBitrate,
		},
		Jobs: Jobs{
			DefaultTTLSeconds:      defaultTTLSeconds,
			DefaultBackoffLimit:    defaultBackoffLimit,
			RetryBackoffSeconds:    defaultRetryBackoffSeconds,
			RetryBackoffMaxSeconds: defaultRetryBackoffMaxSeconds,
			ResyncIntervalSeconds:  defaultResyncIntervalSeconds,
			Reconcilers:            defaultReconcilers,
			UnitDeadlineSeconds:    defaultUnitDeadlineSeconds,
			WorkerBinary:           defaultWorkerBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
