// Package check provides system diagnostics (--check mode) and the start-up
// dependency check (CheckDeps) that fails fast when the transcoder cannot be
// spawned.
package check

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/backmassage/vconv/internal/config"
	"github.com/backmassage/vconv/internal/ffmpeg"
	"github.com/backmassage/vconv/internal/media"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFFmpegNotFound  = errors.New("ffmpeg could not be started")
	ErrFFprobeNotFound = errors.New("ffprobe could not be started")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// encoderFor is the video encoder ffmpeg picks by default for each output
// container. A build without it cannot produce that format.
var encoderFor = map[media.Format]string{
	media.FormatWebM: "libvpx-vp9",
	media.FormatMP4:  "libx264",
	media.FormatMKV:  "libx264",
	media.FormatMOV:  "libx264",
	media.FormatAVI:  "mpeg4",
}

// CheckDeps spawns `ffmpeg -version` (and `ffprobe -version` in JSON probe
// mode) and returns a sentinel error when a tool cannot be started or
// exits non-zero.
func CheckDeps(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner) error {
	if _, err := version(ctx, runner, cfg.FFmpegPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	if cfg.ProbeMode == config.ProbeJSON {
		if _, err := version(ctx, runner, cfg.FFprobePath); err != nil {
			return fmt.Errorf("%w: %v", ErrFFprobeNotFound, err)
		}
	}
	return nil
}

// RunCheck runs the interactive --check flow: prints the version of each
// tool and whether the encoder behind every output format is available.
// This is informational only; it does not stop on failure.
func RunCheck(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner, log Logger) {
	log.Info("=== System Check ===")

	line, err := version(ctx, runner, cfg.FFmpegPath)
	if err != nil {
		log.Error("%s: %v", cfg.FFmpegPath, err)
		return
	}
	log.Success("ffmpeg: %s", line)

	if line, err := version(ctx, runner, cfg.FFprobePath); err != nil {
		if cfg.ProbeMode == config.ProbeJSON {
			log.Error("%s: %v (required by --probe-mode json)", cfg.FFprobePath, err)
		} else {
			log.Warn("%s: %v (only needed for --probe-mode json)", cfg.FFprobePath, err)
		}
	} else {
		log.Success("ffprobe: %s", line)
	}

	checkEncoders(ctx, cfg, runner, log)
}

// checkEncoders lists ffmpeg's encoders once and reports each format.
func checkEncoders(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner, log Logger) {
	res := runner.Run(ctx, cfg.FFmpegPath, "-hide_banner", "-encoders")
	if !res.Success() {
		log.Warn("Could not list encoders: %v", res.Err)
		return
	}
	available := parseEncoders(res.Stdout)

	log.Info("Output formats:")
	for _, f := range media.Formats() {
		enc := encoderFor[f]
		if available[enc] {
			log.Success("  %-5s %s", f, enc)
		} else {
			log.Warn("  %-5s %s missing", f, enc)
		}
	}
}

// parseEncoders extracts encoder names from `ffmpeg -encoders` output. Data
// lines start with a six-character capability field such as " V....D".
func parseEncoders(out string) map[string]bool {
	names := make(map[string]bool)
	past := false
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "------") {
			past = true
			continue
		}
		if !past {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			names[fields[1]] = true
		}
	}
	return names
}

// version runs `<bin> -version` and returns the first line of its output.
func version(ctx context.Context, runner ffmpeg.Runner, bin string) (string, error) {
	res := runner.Run(ctx, bin, "-version")
	if !res.Spawned {
		return "", res.Err
	}
	if !res.Success() {
		return "", fmt.Errorf("exited with status %d", res.ExitCode)
	}
	line := strings.TrimSpace(res.Stdout)
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	return line, nil
}
