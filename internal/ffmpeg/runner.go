// Package ffmpeg wraps the FFmpeg and FFprobe binaries for duration probing
// and single-frame extraction.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg_go "github.com/u2takey/ffmpeg-go"
)

// CommandRunner abstracts exec.CommandContext so tests can inject a stub.
type CommandRunner interface {
	// Run executes name with args and returns any error.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes name with args and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the real CommandRunner that shells out to the system.
type ExecCommandRunner struct{}

// Run executes name with args using os/exec.
func (ExecCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s exited with error: %w\noutput:\n%s", name, err, string(out))
	}
	return nil
}

// Output executes name with args and returns stdout. Stderr is folded into
// the error on failure.
func (ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s exited with error: %w\noutput:\n%s", name, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Runner wraps FFmpeg commands for frame extraction.
type Runner struct {
	// Cmd is the command executor; defaults to ExecCommandRunner{}.
	Cmd         CommandRunner
	FFmpegPath  string
	FFprobePath string
}

// NewRunner constructs a Runner with the real ExecCommandRunner and the
// binaries resolved from PATH.
func NewRunner() *Runner {
	return &Runner{Cmd: ExecCommandRunner{}, FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}
}

// probeOutput is the subset of `ffprobe -of json` output we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the container duration of inputPath in seconds.
func (r *Runner) Duration(ctx context.Context, inputPath string) (float64, error) {
	out, err := r.Cmd.Output(ctx, r.ffprobe(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputPath,
	)
	if err != nil {
		return 0, err
	}

	var p probeOutput
	if err := json.Unmarshal(out, &p); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	raw := strings.TrimSpace(p.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, errors.New("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive duration %v", d)
	}
	return d, nil
}

// endGuard keeps a seek at 100% from landing past the last frame.
const endGuard = 0.1

// SeekOffset converts a percentage of duration into an absolute seek offset
// in seconds, clamped to [0, duration-endGuard].
func SeekOffset(duration, percent float64) float64 {
	off := duration * percent / 100
	if limit := duration - endGuard; off > limit {
		off = limit
	}
	if off < 0 {
		off = 0
	}
	return off
}

// FrameArgs builds the ffmpeg argument list that writes one JPEG frame taken
// offsetSeconds into inputPath to destPath.
func FrameArgs(inputPath, destPath string, offsetSeconds float64) []string {
	return ffmpeg_go.
		Input(inputPath, ffmpeg_go.KwArgs{"ss": strconv.FormatFloat(offsetSeconds, 'f', 3, 64)}).
		Output(destPath, ffmpeg_go.KwArgs{"frames:v": 1, "q:v": 2}).
		OverWriteOutput().
		GetArgs()
}

// ExtractFrame probes inputPath for its duration and writes the frame at
// percent of that duration as a JPEG to destPath.
func (r *Runner) ExtractFrame(ctx context.Context, inputPath, destPath string, percent float64) error {
	duration, err := r.Duration(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("probe duration: %w", err)
	}

	offset := SeekOffset(duration, percent)
	if err := r.Cmd.Run(ctx, r.ffmpeg(), FrameArgs(inputPath, destPath, offset)...); err != nil {
		return err
	}

	// ffmpeg can exit 0 without writing anything when the seek overshoots.
	if _, err := os.Stat(destPath); err != nil {
		return fmt.Errorf("frame not written at %.3fs: %w", offset, err)
	}
	return nil
}

func (r *Runner) ffmpeg() string {
	if r.FFmpegPath == "" {
		return "ffmpeg"
	}
	return r.FFmpegPath
}

func (r *Runner) ffprobe() string {
	if r.FFprobePath == "" {
		return "ffprobe"
	}
	return r.FFprobePath
}
