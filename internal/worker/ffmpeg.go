package worker

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"clipd/internal/config"
	"clipd/internal/services"
)

var commandContext = exec.CommandContext

// Transcoder cuts one clip out of a local source file.
type Transcoder interface {
	Extract(ctx context.Context, req ExtractRequest) error
}

// ExtractRequest describes one cut: input and output are local paths,
// offsets are seconds from the start of the recording.
type ExtractRequest struct {
	InputPath    string
	OutputPath   string
	StartSeconds float64
	EndSeconds   float64
}

// FFmpeg shells out to the configured ffmpeg binary with hardware-
// accelerated decode and encode.
type FFmpeg struct {
	binary string
	cfg    config.FFmpeg
}

// NewFFmpeg builds the transcoder from the ffmpeg configuration section.
func NewFFmpeg(cfg config.FFmpeg) *FFmpeg {
	return &FFmpeg{binary: cfg.Binary, cfg: cfg}
}

// Args renders the deterministic ffmpeg argument list for a request.
// Seeking happens before the input so ffmpeg jumps straight to the
// keyframe preceding the cut instead of decoding the whole recording.
func (f *FFmpeg) Args(req ExtractRequest) []string {
	duration := req.EndSeconds - req.StartSeconds
	args := []string{}
	if f.cfg.HardwareAccel != "" {
		args = append(args, "-hwaccel", f.cfg.HardwareAccel)
	}
	args = append(args,
		"-ss", formatSeconds(req.StartSeconds),
		"-i", req.InputPath,
		"-t", formatSeconds(duration),
		"-c:v", f.cfg.VideoCodec,
		"-preset", f.cfg.Preset,
		"-c:a", f.cfg.AudioCodec,
		"-b:a", f.cfg.AudioBitrate,
		"-y",
		req.OutputPath,
	)
	return args
}

// Extract runs ffmpeg and classifies failures as transcode errors. The last
// stderr lines are folded into the error message since ffmpeg reports its
// actual failure cause there.
func (f *FFmpeg) Extract(ctx context.Context, req ExtractRequest) error {
	if req.EndSeconds <= req.StartSeconds {
		return services.Wrap(services.ErrValidation, "worker", "transcode",
			fmt.Sprintf("empty interval %.3f..%.3f", req.StartSeconds, req.EndSeconds), nil)
	}

	cmd := commandContext(ctx, f.binary, f.Args(req)...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrTimeout, "worker", "transcode", "ffmpeg interrupted", ctx.Err())
		}
		return services.Wrap(services.ErrTranscode, "worker", "transcode",
			fmt.Sprintf("ffmpeg failed: %s", tailLines(string(output), 5)), err)
	}
	return nil
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

var _ Transcoder = (*FFmpeg)(nil)
