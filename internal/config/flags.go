package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into request, tools, behavior, display, and utility.
// Boolean overrides (e.g. --no-color) are applied after Parse so Config defaults hold unless set.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/backmassage/vconv/internal/media"
)

// Returned by parseArgs when the user asked for help or version output.
var (
	errShowHelp    = errors.New("help requested")
	errShowVersion = errors.New("version requested")
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, bad value).
func ParseFlags(cfg *Config, version string) error {
	err := parseArgs(cfg, version, os.Args[1:], os.Stderr)
	switch {
	case errors.Is(err, errShowHelp):
		os.Exit(0)
	case errors.Is(err, errShowVersion):
		fmt.Fprintln(os.Stdout, "vconv v"+version)
		os.Exit(0)
	}
	return err
}

// postFlags holds boolean flags that are applied after Parse.
// These either override a default (noColor -> ColorNever) or trigger exit (showHelp, showVersion).
type postFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

func parseArgs(cfg *Config, version string, args []string, usageOut io.Writer) error {
	fs := flag.NewFlagSet("vconv", flag.ContinueOnError)
	fs.SetOutput(usageOut)
	fs.Usage = func() { printUsage(usageOut, version) }

	var post postFlags

	defineRequestFlags(fs, cfg)
	defineToolFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &post)
	defineUtilityFlags(fs, &post)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errShowHelp
		}
		return err
	}

	applyPostFlags(cfg, &post)

	if post.showHelp {
		printUsage(usageOut, version)
		return errShowHelp
	}
	if post.showVersion {
		return errShowVersion
	}

	parsePositionalArgs(fs, cfg)
	return nil
}

// defineRequestFlags registers -f/--format, -b/--bitrate, -r/--resolution, --remove-audio, --strip-metadata.
func defineRequestFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&formatValue{&cfg.Format}, "format", "Output format: webm | mp4 | avi | mkv | mov")
	fs.Var(&formatValue{&cfg.Format}, "f", "Same as --format")
	fs.Var(&bitrateValue{&cfg.Bitrate}, "bitrate", "Target video bitrate in kb/s (e.g. 2500 or 2500k)")
	fs.Var(&bitrateValue{&cfg.Bitrate}, "b", "Same as --bitrate")
	fs.Var(&resolutionValue{&cfg.Resolution}, "resolution", "Target resolution preset (e.g. 1920x1080)")
	fs.Var(&resolutionValue{&cfg.Resolution}, "r", "Same as --resolution")
	fs.BoolVar(&cfg.RemoveAudio, "remove-audio", false, "Drop all audio streams")
	fs.BoolVar(&cfg.StripMetadata, "strip-metadata", false, "Strip container metadata")
}

// defineToolFlags registers --ffmpeg, --ffprobe, --probe-mode.
func defineToolFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "Path to the ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "Path to the ffprobe binary (json probe mode)")
	fs.Var(&probeModeValue{&cfg.ProbeMode}, "probe-mode", "Probe strategy: scrape | json")
}

// defineBehaviorFlags registers jobs, probe, dry-run, check, serve.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "Number of concurrent conversions")
	fs.IntVar(&cfg.Jobs, "j", cfg.Jobs, "Same as --jobs")
	fs.BoolVar(&cfg.ProbeOnly, "probe", false, "Report probed bitrate/resolution and exit")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Print the ffmpeg command; do not convert")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.ServeAddr, "serve", cfg.ServeAddr, "Serve the HTTP control API on this address (e.g. :8080)")
}

// defineDisplayFlags registers --color, --no-color, verbose, --show-ffmpeg, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, p *postFlags) {
	fs.BoolVar(&p.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&p.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.ShowFFmpegOutput, "show-ffmpeg", false, "Stream ffmpeg output while converting")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, p *postFlags) {
	fs.BoolVar(&p.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&p.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&p.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&p.showHelp, "h", false, "Same as --help")
}

// applyPostFlags copies override flag values into cfg.
func applyPostFlags(cfg *Config, p *postFlags) {
	if p.noColor {
		cfg.ColorMode = ColorNever
	} else if p.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs stores every remaining argument as an input.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) {
	cfg.Inputs = cfg.Inputs[:0]
	for _, a := range fs.Args() {
		cfg.Inputs = append(cfg.Inputs, NormalizeDirArg(a))
	}
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "vconv v" + version + " - convert videos through ffmpeg without clobbering files"},
		{"", ""},
		{"  vconv [OPTIONS] <input>...", ""},
		{"  vconv --serve :8080", ""},
		{"", ""},
		{"Request (defaults come from probing each input)", ""},
		{"  -f, --format <ext>", "webm | mp4 | avi | mkv | mov (default: input's own)"},
		{"  -b, --bitrate <kbps>", "Target video bitrate (default: probed, 500-50000)"},
		{"  -r, --resolution <WxH>", "640x480 | 1280x720 | 1920x1080 | 2560x1440 | 3840x2160"},
		{"  --remove-audio", "Drop audio streams"},
		{"  --strip-metadata", "Strip container metadata"},
		{"", ""},
		{"Tools", ""},
		{"  --ffmpeg <path>", "ffmpeg binary (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe binary (default: ffprobe)"},
		{"  --probe-mode <scrape|json>", "Probe strategy (default: scrape)"},
		{"", ""},
		{"Behavior", ""},
		{"  -j, --jobs <n>", "Concurrent conversions (default: 1)"},
		{"  --probe", "Report probed values and exit"},
		{"  -d, --dry-run", "Print the ffmpeg command only"},
		{"  --serve <addr>", "Run the HTTP control API"},
		{"", ""},
		{"Display", ""},
		{"  --show-ffmpeg", "Stream ffmpeg output while converting"},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe, encoders)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so we can use validated types with flag.Var.

type formatValue struct{ p *media.Format }

func (f *formatValue) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f *formatValue) Set(s string) error {
	v, err := media.ParseFormat(s)
	if err != nil {
		return err
	}
	*f.p = v
	return nil
}

type resolutionValue struct{ p *media.Resolution }

func (r *resolutionValue) String() string {
	if r.p == nil || r.p.IsZero() {
		return ""
	}
	return r.p.String()
}

func (r *resolutionValue) Set(s string) error {
	v, err := media.ParseResolution(s)
	if err != nil {
		return err
	}
	*r.p = v
	return nil
}

// bitrateValue accepts "2500", "2500k", "2500K", "2500kbps". Stored as kb/s.
type bitrateValue struct{ p *int }

func (b *bitrateValue) String() string {
	if b.p == nil || *b.p == 0 {
		return ""
	}
	return strconv.Itoa(*b.p) + "k"
}

func (b *bitrateValue) Set(raw string) error {
	s := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasSuffix(s, "kbps") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "kbps"))
	} else if strings.HasSuffix(s, "k") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid bitrate %q (use positive kb/s value, e.g. 2500k)", raw)
	}
	if !media.BitrateSelectable(n) {
		return fmt.Errorf("bitrate %q out of range (use %d-%d kb/s)", raw, media.BitrateMin, media.BitrateMax)
	}
	*b.p = n
	return nil
}

type probeModeValue struct{ p *ProbeMode }

func (m *probeModeValue) String() string {
	if m.p == nil {
		return ""
	}
	return string(*m.p)
}

func (m *probeModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "scrape":
		*m.p = ProbeScrape
	case "json":
		*m.p = ProbeJSON
	default:
		return fmt.Errorf("invalid probe mode %q (use 'scrape' or 'json')", s)
	}
	return nil
}
