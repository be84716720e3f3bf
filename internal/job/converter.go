package job

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/backmassage/vconv/internal/ffmpeg"
	"github.com/backmassage/vconv/internal/media"
	"github.com/backmassage/vconv/internal/naming"
)

// Converter starts jobs against one transcoder binary.
type Converter struct {
	Runner ffmpeg.Runner
	Binary string // Default: "ffmpeg".

	// OnComplete, when set, runs once per job on its worker goroutine, never
	// inside Start. The job's Outcome is final by then.
	OnComplete func(*Job)

	// Logger receives debug and warning events. Nil disables logging.
	Logger *zerolog.Logger
}

func (c *Converter) binary() string {
	if c.Binary == "" {
		return "ffmpeg"
	}
	return c.Binary
}

func (c *Converter) log() *zerolog.Logger {
	if c.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return c.Logger
}

// Start validates req, reserves a destination next to source and launches
// the transcoder in the background. It returns without waiting for the
// process.
//
// An invalid request returns an error wrapping media.ErrInvalidRequest and
// nothing is spawned. Every other problem is reported through the job's
// Outcome.
func (c *Converter) Start(ctx context.Context, source string, req media.Request) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	j := newJob(uuid.NewString(), source, req, c.OnComplete)
	log := c.log().With().Str("job", j.ID).Str("source", source).Logger()

	dest, err := naming.ReserveDestination(source, req.Format)
	if err != nil {
		log.Warn().Err(err).Msg("no destination")
		go j.complete(Failure(fmt.Sprintf("cannot choose destination: %v", err)))
		return j, nil
	}
	j.Destination = dest

	args := ffmpeg.Build(source, req, dest)
	log.Debug().Str("command", ffmpeg.FormatCommand(c.binary(), args)).Msg("starting")

	go c.run(ctx, j, args, log)
	return j, nil
}

func (c *Converter) run(ctx context.Context, j *Job, args []string, log zerolog.Logger) {
	bin := c.binary()
	res := c.Runner.Run(ctx, bin, args...)

	var o Outcome
	switch {
	case !res.Spawned:
		o = Outcome{
			Status:     StatusFailure,
			Diagnostic: fmt.Sprintf("failed to start %s: %v", bin, res.Err),
			Kind:       ffmpeg.FailureSpawn,
		}
	case res.Success():
		o = Success(j.Destination)
	default:
		diag := strings.TrimSpace(res.Stderr)
		if diag == "" {
			diag = fmt.Sprintf("%s exited with status %d", bin, res.ExitCode)
		}
		o = Failure(diag)
	}

	if o.OK() {
		log.Debug().Str("output", o.Output).Dur("elapsed", j.Elapsed()).Msg("finished")
	} else {
		if err := os.Remove(j.Destination); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("destination", j.Destination).Msg("could not remove partial output")
		}
		log.Debug().Str("kind", string(o.Kind)).Strs("stderr_tail", ffmpeg.Tail(res.Stderr, 3)).Msg("failed")
	}

	j.complete(o)
}
