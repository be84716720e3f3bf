package probe

import (
	"context"

	"github.com/backmassage/vconv/internal/media"
)

// Result holds what probing detected. Zero fields mean "not detected".
type Result struct {
	Bitrate    int              `json:"bitrate,omitempty"` // kb/s, overall container bitrate
	Resolution media.Resolution `json:"resolution"`
}

// HasBitrate reports whether a bitrate was detected.
func (r Result) HasBitrate() bool { return r.Bitrate > 0 }

// HasResolution reports whether both frame dimensions were detected.
func (r Result) HasResolution() bool { return r.Resolution.Width > 0 && r.Resolution.Height > 0 }

// Coverage summarizes detection as "full", "partial" or "none".
func (r Result) Coverage() string {
	switch {
	case r.HasBitrate() && r.HasResolution():
		return "full"
	case r.HasBitrate() || r.HasResolution():
		return "partial"
	default:
		return "none"
	}
}

// Prober inspects a single file. Implementations never return an error;
// anything they cannot detect is left zero in the Result.
type Prober interface {
	Inspect(ctx context.Context, path string) Result
}
