// Package config holds runtime configuration: defaults, environment and
// .env layering, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/backmassage/vconv/internal/media"
)

// --- Enum types for validated string fields ---

// ProbeMode selects how source files are inspected.
type ProbeMode string

const (
	ProbeScrape ProbeMode = "scrape" // Parse `ffmpeg -i` diagnostics (default).
	ProbeJSON   ProbeMode = "json"   // Structured `ffprobe` JSON output.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultEnvFiles are read by LoadEnv when no files are given. Missing files
// are ignored; variables already set in the environment win.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [LoadEnv], then [ParseFlags], before being passed (by pointer) to the
// packages that need it.
type Config struct {
	// Inputs (positional args): files or directories.
	Inputs []string

	// Request overrides. Zero values mean "keep the probe-seeded value".
	Format        media.Format
	Bitrate       int // kb/s
	Resolution    media.Resolution
	RemoveAudio   bool
	StripMetadata bool

	// External tools.
	FFmpegPath  string    // Default: "ffmpeg". Env: VCONV_FFMPEG.
	FFprobePath string    // Default: "ffprobe". Env: VCONV_FFPROBE.
	ProbeMode   ProbeMode // Default: "scrape". Env: VCONV_PROBE_MODE.

	// Behavior flags.
	Jobs      int // Concurrent conversions. Default: 1. Env: VCONV_JOBS.
	DryRun    bool
	ProbeOnly bool
	CheckOnly bool

	// HTTP control surface.
	ServeAddr      string   // Empty disables serve mode. Env: VCONV_LISTEN.
	AllowedOrigins []string // CORS origins. Default: ["*"]. Env: VCONV_CORS_ORIGINS.

	// Display and logging.
	Verbose          bool
	ShowFFmpegOutput bool      // Tee ffmpeg stderr to the terminal while converting.
	ColorMode        ColorMode // Default: "auto". Env: VCONV_COLOR.
	LogFile          string    // Optional log file path. Env: VCONV_LOG_FILE.
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		ProbeMode:      ProbeScrape,
		Jobs:           1,
		AllowedOrigins: []string{"*"},
		ColorMode:      ColorAuto,
	}
}

// LoadEnv reads the given .env files (DefaultEnvFiles when none are given)
// into the process environment, then applies VCONV_* variables to cfg.
// Flags parsed afterwards take precedence over anything set here.
func LoadEnv(cfg *Config, files ...string) error {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	if v := os.Getenv("VCONV_FFMPEG"); v != "" {
		cfg.FFmpegPath = v
	}
	if v := os.Getenv("VCONV_FFPROBE"); v != "" {
		cfg.FFprobePath = v
	}
	if v := os.Getenv("VCONV_PROBE_MODE"); v != "" {
		cfg.ProbeMode = ProbeMode(strings.ToLower(v))
	}
	if v := os.Getenv("VCONV_JOBS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("VCONV_JOBS must be a whole number (got %q)", v)
		}
		cfg.Jobs = n
	}
	if v := os.Getenv("VCONV_LISTEN"); v != "" {
		cfg.ServeAddr = v
	}
	if v := os.Getenv("VCONV_CORS_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("VCONV_COLOR"); v != "" {
		cfg.ColorMode = ColorMode(strings.ToLower(v))
	}
	if v := os.Getenv("VCONV_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and request overrides. Outside check and serve
// modes it also requires at least one input.
func (c *Config) Validate() error {
	switch c.ProbeMode {
	case ProbeScrape, ProbeJSON:
		// valid
	default:
		return errors.New("invalid probe mode (use 'scrape' or 'json')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Format != "" && !c.Format.Valid() {
		return fmt.Errorf("unsupported format %q (use webm, mp4, avi, mkv or mov)", c.Format)
	}
	if c.Bitrate < 0 {
		return fmt.Errorf("bitrate must be positive (got %d)", c.Bitrate)
	}
	if c.Bitrate != 0 && !media.BitrateSelectable(c.Bitrate) {
		return fmt.Errorf("bitrate %d out of range (use %d-%d kb/s)", c.Bitrate, media.BitrateMin, media.BitrateMax)
	}
	if !c.Resolution.IsZero() && !c.Resolution.IsPreset() {
		return fmt.Errorf("resolution %s is not a preset (use %s)", c.Resolution, presetList())
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1 (got %d)", c.Jobs)
	}
	if c.FFmpegPath == "" {
		return errors.New("ffmpeg path must not be empty")
	}

	if c.CheckOnly || c.ServeAddr != "" {
		return nil
	}
	if len(c.Inputs) == 0 {
		return errors.New("need at least one input file or directory")
	}
	return nil
}

// ApplyOverrides returns req with every user-specified field replacing the
// seeded one.
func (c *Config) ApplyOverrides(req media.Request) media.Request {
	if c.Format != "" {
		req.Format = c.Format
	}
	if c.Bitrate > 0 {
		req.Bitrate = c.Bitrate
	}
	if !c.Resolution.IsZero() {
		req.Resolution = c.Resolution
	}
	if c.RemoveAudio {
		req.Audio = media.AudioRemove
	}
	if c.StripMetadata {
		req.Metadata = media.MetadataStrip
	}
	return req
}

func presetList() string {
	var names []string
	for _, p := range media.Presets() {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}
