package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/vconv/internal/ffmpeg"
)

// JSONProber runs a single ffprobe JSON call per file.
type JSONProber struct {
	Runner ffmpeg.Runner
	Binary string // Default: "ffprobe".
}

// Inspect returns an empty Result when ffprobe is missing, fails, or prints
// something that is not JSON.
func (p JSONProber) Inspect(ctx context.Context, path string) Result {
	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}
	res := p.Runner.Run(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if !res.Success() {
		return Result{}
	}
	r, err := ParseJSON([]byte(res.Stdout))
	if err != nil {
		return Result{}
	}
	return r
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	BitRate string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	BitRate     string         `json:"bit_rate"`
	Disposition map[string]int `json:"disposition"`
}

// buildResult prefers the container bitrate, matching what the diagnostic
// scrape reports, and falls back to the primary video stream's own bitrate.
// The primary video stream is the first one that is not cover art.
func buildResult(raw *ffprobeOutput) Result {
	var r Result
	r.Bitrate = kbps(raw.Format.BitRate)

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		if s.Width > 0 && s.Height > 0 {
			r.Resolution.Width, r.Resolution.Height = s.Width, s.Height
		}
		if r.Bitrate == 0 {
			r.Bitrate = kbps(s.BitRate)
		}
		break
	}
	return r
}

// kbps converts ffprobe's bits-per-second string to kb/s.
func kbps(bitsPerSec string) int {
	n, err := strconv.ParseInt(strings.TrimSpace(bitsPerSec), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return int(n / 1000)
}
