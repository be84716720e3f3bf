package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/vconv/internal/config"
	"github.com/backmassage/vconv/internal/display"
	"github.com/backmassage/vconv/internal/ffmpeg"
	"github.com/backmassage/vconv/internal/job"
	"github.com/backmassage/vconv/internal/logging"
	"github.com/backmassage/vconv/internal/media"
	"github.com/backmassage/vconv/internal/naming"
	"github.com/backmassage/vconv/internal/probe"
)

// stderrLines is how much of a failed conversion's diagnostic is echoed.
const stderrLines = 20

// Pipeline holds everything a batch run needs.
type Pipeline struct {
	cfg       *config.Config
	log       *logging.Logger
	prober    probe.Prober
	converter *job.Converter
	out       io.Writer // Dry-run commands and the probe report.
}

// New wires a prober and converter around runner.
func New(cfg *config.Config, log *logging.Logger, runner ffmpeg.Runner) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		log:    log,
		prober: probe.New(cfg, runner),
		converter: &job.Converter{
			Runner: runner,
			Binary: cfg.FFmpegPath,
			Logger: log.Zerolog(),
		},
		out: os.Stdout,
	}
}

// Run is the top-level batch entry point. It discovers files, converts up
// to cfg.Jobs of them at a time, and returns aggregate stats. Per-file
// failures are counted, never returned.
func (p *Pipeline) Run(ctx context.Context) *RunStats {
	stats := &RunStats{}
	start := time.Now()

	files, rejected, err := Discover(p.cfg.Inputs)
	if err != nil {
		p.log.Error("File discovery failed: %v", err)
		return stats
	}
	for _, r := range rejected {
		p.log.Warn("Skip (not a video): %s", r)
	}
	stats.Total = len(files)
	stats.recordSkipped(len(rejected))

	p.logBatchHeader(stats)

	claims := naming.NewClaims()
	g := new(errgroup.Group)
	g.SetLimit(p.cfg.Jobs)

	for i, path := range files {
		if ctx.Err() != nil {
			p.log.Warn("Interrupted")
			break
		}
		n := i + 1
		path := path
		g.Go(func() error {
			p.processFile(ctx, n, stats.Total, path, stats, claims)
			return nil
		})
	}
	_ = g.Wait()

	p.logSummary(stats, time.Since(start))
	return stats
}

// processFile handles one source: stat → probe → seed request → override →
// rate → convert (or print, in dry-run mode).
func (p *Pipeline) processFile(
	ctx context.Context,
	n, total int,
	path string,
	stats *RunStats,
	claims *naming.Claims,
) {
	basename := filepath.Base(path)
	p.log.Info("[%d/%d] %s", n, total, basename)

	// --- Validate ---
	fi, err := os.Stat(path)
	if err != nil {
		p.log.Error("File not found: %s", path)
		stats.recordFailed()
		return
	}

	// --- Probe and seed ---
	res := p.prober.Inspect(ctx, path)
	p.log.Debug("  Probe: %s, %s (%s)",
		display.FormatBitrate(res.Bitrate), display.FormatResolution(res.Resolution), res.Coverage())

	req := p.cfg.ApplyOverrides(probe.SuggestRequest(path, res))
	if err := req.Validate(); err != nil {
		p.log.Error("  %v", err)
		stats.recordFailed()
		return
	}
	p.logRequest(req)

	// --- Dry-run ---
	if p.cfg.DryRun {
		dest, err := claims.Choose(path, req.Format)
		if err != nil {
			p.log.Error("  %v", err)
			stats.recordFailed()
			return
		}
		fmt.Fprintln(p.out, ffmpeg.FormatCommand(p.cfg.FFmpegPath, ffmpeg.Build(path, req, dest)))
		p.log.Success("  [DRY] Would convert -> %s", filepath.Base(dest))
		stats.recordConverted(0, 0)
		return
	}

	// --- Convert ---
	j, err := p.converter.Start(ctx, path, req)
	if err != nil {
		p.log.Error("  %v", err)
		stats.recordFailed()
		return
	}
	if j.Destination != "" {
		p.log.Info("  -> %s", filepath.Base(j.Destination))
	}

	<-j.Done()
	o, _ := j.Outcome()
	if !o.OK() {
		p.logFailure(o)
		stats.recordFailed()
		return
	}

	var outSize int64
	if outInfo, err := os.Stat(o.Output); err == nil {
		outSize = outInfo.Size()
	}
	stats.recordConverted(fi.Size(), outSize)
	p.log.Success("  Converted in %s, %s",
		display.FormatDuration(j.Elapsed()), display.FormatSizeChange(fi.Size(), outSize))
}

// --- Logging helpers ---

func (p *Pipeline) logRequest(req media.Request) {
	rating := media.Rate(req.Resolution, req.Bitrate)
	var extras []string
	if req.Audio == media.AudioRemove {
		extras = append(extras, "no audio")
	}
	if req.Metadata == media.MetadataStrip {
		extras = append(extras, "no metadata")
	}
	suffix := ""
	if len(extras) > 0 {
		suffix = ", " + strings.Join(extras, ", ")
	}
	p.log.Info("  %s %s @ %s [%s]%s",
		strings.ToUpper(string(req.Format)), req.Resolution, display.FormatBitrate(req.Bitrate),
		display.RatingLabel(rating), suffix)
	if rating == media.RatingExcessive {
		p.log.Warn("  Bitrate is excessive for %s; the output will be larger than needed", req.Resolution)
	}
}

func (p *Pipeline) logFailure(o job.Outcome) {
	p.log.Error("  Conversion failed (%s)", o.Kind)
	for _, l := range ffmpeg.Tail(o.Diagnostic, stderrLines) {
		p.log.Error("    %s", l)
	}
}

func (p *Pipeline) logBatchHeader(stats *RunStats) {
	p.log.Info("Found %d files", stats.Total)
	if p.cfg.Jobs > 1 {
		p.log.Info("Concurrency: %d jobs", p.cfg.Jobs)
	}
	overrides := describeOverrides(p.cfg)
	if overrides == "" {
		overrides = "none (probe-seeded defaults)"
	}
	p.log.Info("Overrides: %s", overrides)
	if p.cfg.DryRun {
		p.log.Info("Dry run: commands are printed, nothing is written")
	}
}

func describeOverrides(cfg *config.Config) string {
	var parts []string
	if cfg.Format != "" {
		parts = append(parts, "format="+string(cfg.Format))
	}
	if cfg.Bitrate > 0 {
		parts = append(parts, "bitrate="+display.FormatBitrate(cfg.Bitrate))
	}
	if !cfg.Resolution.IsZero() {
		parts = append(parts, "resolution="+cfg.Resolution.String())
	}
	if cfg.RemoveAudio {
		parts = append(parts, "remove-audio")
	}
	if cfg.StripMetadata {
		parts = append(parts, "strip-metadata")
	}
	return strings.Join(parts, " ")
}

func (p *Pipeline) logSummary(stats *RunStats, elapsed time.Duration) {
	p.log.Info("=== Summary ===")
	p.log.Info("Total: %d  Converted: %d  Skipped: %d  Failed: %d",
		stats.Total, stats.Converted, stats.Skipped, stats.Failed)
	if stats.TotalInputBytes > 0 {
		saved := stats.SpaceSaved()
		if saved >= 0 {
			p.log.Success("Space saved: %s", display.FormatBytes(saved))
		} else {
			p.log.Warn("Outputs grew by %s", display.FormatBytes(-saved))
		}
	}
	p.log.Elapsed("Batch finished", elapsed)
}
