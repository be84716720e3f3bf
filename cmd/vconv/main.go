// Command vconv converts video files with ffmpeg.
//
// It probes each source to seed a conversion request, applies the
// command-line overrides, and runs the conversions as managed jobs. With
// --serve it exposes the same operations over HTTP instead.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/backmassage/vconv/internal/api"
	"github.com/backmassage/vconv/internal/check"
	"github.com/backmassage/vconv/internal/config"
	"github.com/backmassage/vconv/internal/display"
	"github.com/backmassage/vconv/internal/ffmpeg"
	"github.com/backmassage/vconv/internal/logging"
	"github.com/backmassage/vconv/internal/metrics"
	"github.com/backmassage/vconv/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr.
	cfg := config.DefaultConfig()
	if err := config.LoadEnv(&cfg, config.DefaultEnvFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "vconv: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "vconv: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "vconv: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vconv: %v\n", err)
		return 1
	}
	defer log.Close()

	metrics.SetAppInfo(version, commit, runtime.Version())

	// Phase 2: Logger available. Everything goes through log from here on.
	display.PrintBanner(os.Stdout, version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runner ffmpeg.Runner = ffmpeg.ExecRunner{}
	if cfg.ShowFFmpegOutput {
		runner = ffmpeg.ExecRunner{Tee: os.Stderr}
	}

	if cfg.CheckOnly {
		check.RunCheck(ctx, &cfg, runner, log)
		return 0
	}

	log.Info("=== vconv v%s (%s) ===", version, commit)
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	// Fail fast if the tools the chosen mode needs cannot be started.
	if err := check.CheckDeps(ctx, &cfg, runner); err != nil {
		log.Error("%v", err)
		log.Error("Run with --check for details")
		return 1
	}

	// Phase 3: Run the selected mode until it finishes or a signal arrives.
	switch {
	case cfg.ServeAddr != "":
		h := api.NewHandler(ctx, &cfg, runner, log.Zerolog())
		log.Info("Listening on %s", cfg.ServeAddr)
		if err := api.Serve(ctx, cfg.ServeAddr, api.NewServerHandler(h, cfg.AllowedOrigins)); err != nil {
			log.Error("Server: %v", err)
			return 1
		}
		log.Info("Server stopped")
		return 0

	case cfg.ProbeOnly:
		pipeline.New(&cfg, log, runner).Analyze(ctx)
		return 0

	default:
		stats := pipeline.New(&cfg, log, runner).Run(ctx)
		if stats.Failed > 0 || ctx.Err() != nil {
			return 1
		}
		return 0
	}
}
