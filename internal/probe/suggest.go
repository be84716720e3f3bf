package probe

import (
	"path/filepath"

	"github.com/backmassage/vconv/internal/media"
)

// SuggestRequest seeds a conversion request from the source path and what
// probing detected:
//   - format: the source's own extension when it is an output format, else webm
//   - bitrate: the probed value clamped to the selectable range, else the default
//   - resolution: the probed size only when it is a preset, else 640x480
//
// Audio is kept and metadata is preserved.
func SuggestRequest(source string, r Result) media.Request {
	req := media.DefaultRequest()

	if f, err := media.ParseFormat(filepath.Ext(source)); err == nil {
		req.Format = f
	}
	if r.HasBitrate() {
		req.Bitrate = media.ClampBitrate(r.Bitrate)
	}
	if r.HasResolution() && r.Resolution.IsPreset() {
		req.Resolution = r.Resolution
	}
	return req
}
