package media

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is wrapped by every Request.Validate failure. A request
// that fails validation is rejected before any process is spawned.
var ErrInvalidRequest = errors.New("invalid conversion request")

// Bitrate bounds (kb/s) a user may choose. Probed bitrates are clamped into
// this range when seeding a request.
const (
	BitrateMin     = 500
	BitrateMax     = 50000
	BitrateDefault = 1000
)

// Request describes one conversion. It is built by the caller before a job
// starts and never mutated afterwards.
type Request struct {
	Format     Format         `json:"format"`
	Bitrate    int            `json:"bitrate"` // kb/s
	Resolution Resolution     `json:"resolution"`
	Audio      AudioPolicy    `json:"audio"`
	Metadata   MetadataPolicy `json:"metadata"`
}

// DefaultRequest returns the request a fresh session starts with.
func DefaultRequest() Request {
	return Request{
		Format:     FormatWebM,
		Bitrate:    BitrateDefault,
		Resolution: presets[0],
		Audio:      AudioKeep,
		Metadata:   MetadataKeep,
	}
}

// Validate checks the request invariants. The returned error wraps
// ErrInvalidRequest.
func (r Request) Validate() error {
	if !r.Format.Valid() {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, r.Format)
	}
	if r.Bitrate <= 0 {
		return fmt.Errorf("%w: bitrate must be positive (got %d)", ErrInvalidRequest, r.Bitrate)
	}
	if r.Resolution.Width <= 0 || r.Resolution.Height <= 0 {
		return fmt.Errorf("%w: resolution dimensions must be positive (got %s)", ErrInvalidRequest, r.Resolution)
	}
	if !r.Resolution.IsPreset() {
		return fmt.Errorf("%w: resolution %s is not a preset", ErrInvalidRequest, r.Resolution)
	}
	switch r.Audio {
	case AudioKeep, AudioRemove:
	default:
		return fmt.Errorf("%w: unknown audio policy %q", ErrInvalidRequest, r.Audio)
	}
	switch r.Metadata {
	case MetadataKeep, MetadataStrip:
	default:
		return fmt.Errorf("%w: unknown metadata policy %q", ErrInvalidRequest, r.Metadata)
	}
	return nil
}

// BitrateSelectable reports whether kbps lies in the range a user may pick.
func BitrateSelectable(kbps int) bool {
	return kbps >= BitrateMin && kbps <= BitrateMax
}

// ClampBitrate limits kbps to [BitrateMin, BitrateMax].
func ClampBitrate(kbps int) int {
	if kbps < BitrateMin {
		return BitrateMin
	}
	if kbps > BitrateMax {
		return BitrateMax
	}
	return kbps
}
