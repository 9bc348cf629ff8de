package worker_test

import (
	"reflect"
	"testing"

	"clipd/internal/config"
	"clipd/internal/worker"
)

func TestFFmpegArgs(t *testing.T) {
	ffmpeg := worker.NewFFmpeg(config.Default().FFmpeg)
	args := ffmpeg.Args(worker.ExtractRequest{
		InputPath:    "/tmp/source.mp4",
		OutputPath:   "/tmp/clip.mp4",
		StartSeconds: 330,
		EndSeconds:   345.5,
	})

	want := []string{
		"-hwaccel", "cuda",
		"-ss", "330",
		"-i", "/tmp/source.mp4",
		"-t", "15.5",
		"-c:v", "h264_nvenc",
		"-preset", "fast",
		"-c:a", "aac",
		"-b:a", "128k",
		"-y",
		"/tmp/clip.mp4",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args mismatch:\n got %v\nwant %v", args, want)
	}
}

func TestFFmpegArgsWithoutHardwareAccel(t *testing.T) {
	cfg := config.Default().FFmpeg
	cfg.HardwareAccel = ""
	ffmpeg := worker.NewFFmpeg(cfg)
	args := ffmpeg.Args(worker.ExtractRequest{
		InputPath:    "in.mp4",
		OutputPath:   "out.mp4",
		StartSeconds: 0,
		EndSeconds:   10,
	})
	if args[0] != "-ss" {
		t.Fatalf("expected seek first without hwaccel, got %v", args)
	}
}
