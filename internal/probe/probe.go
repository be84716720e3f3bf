package probe

import (
	"context"

	"github.com/backmassage/vconv/internal/config"
	"github.com/backmassage/vconv/internal/ffmpeg"
	"github.com/backmassage/vconv/internal/metrics"
)

// New returns the Prober selected by cfg.ProbeMode, instrumented with the
// probe counter.
func New(cfg *config.Config, runner ffmpeg.Runner) Prober {
	var p Prober
	switch cfg.ProbeMode {
	case config.ProbeJSON:
		p = JSONProber{Runner: runner, Binary: cfg.FFprobePath}
	default:
		p = DiagnosticProber{Runner: runner, Binary: cfg.FFmpegPath}
	}
	return instrumented{inner: p}
}

type instrumented struct {
	inner Prober
}

func (i instrumented) Inspect(ctx context.Context, path string) Result {
	r := i.inner.Inspect(ctx, path)
	metrics.ProbesTotal.WithLabelValues(r.Coverage()).Inc()
	return r
}
