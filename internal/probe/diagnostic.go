package probe

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/backmassage/vconv/internal/ffmpeg"
)

var (
	// "Duration: 00:00:10.00, start: 0.000000, bitrate: 2481 kb/s"
	reBitrate = regexp.MustCompile(`bitrate:\s(\d+)\s`)

	reVideoStream = regexp.MustCompile(`Stream.*Video`)

	// A standalone WxH token. The leading boundary keeps codec tags such as
	// "(avc1 / 0x31637661)" from matching.
	reDimensions = regexp.MustCompile(`(?:^|[\s,])(\d+)x(\d+)(?:[\s,\[]|$)`)
)

// DiagnosticProber scrapes the stream listing ffmpeg prints when given an
// input and no output.
type DiagnosticProber struct {
	Runner ffmpeg.Runner
	Binary string // Default: "ffmpeg".
}

// Inspect runs the transcoder against path. ffmpeg exits non-zero when no
// output is given, so the exit status is ignored and only stderr matters.
func (p DiagnosticProber) Inspect(ctx context.Context, path string) Result {
	bin := p.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	res := p.Runner.Run(ctx, bin, "-hide_banner", "-i", path)
	if !res.Spawned {
		return Result{}
	}
	return ParseDiagnostics(res.Stderr)
}

// ParseDiagnostics extracts the first container bitrate and the frame size
// of the first video stream line from ffmpeg's diagnostic text.
func ParseDiagnostics(text string) Result {
	var r Result

	if m := reBitrate.FindStringSubmatch(text); m != nil {
		r.Bitrate, _ = strconv.Atoi(m[1])
	}

	for _, line := range strings.Split(text, "\n") {
		if !reVideoStream.MatchString(line) {
			continue
		}
		for _, m := range reDimensions.FindAllStringSubmatch(line, -1) {
			w, errW := strconv.Atoi(m[1])
			h, errH := strconv.Atoi(m[2])
			if errW == nil && errH == nil && w > 0 && h > 0 {
				r.Resolution.Width, r.Resolution.Height = w, h
				break
			}
		}
		break
	}
	return r
}
