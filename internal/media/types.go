package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Format is an output container, named by its file extension (no dot).
type Format string

const (
	FormatWebM Format = "webm"
	FormatMP4  Format = "mp4"
	FormatAVI  Format = "avi"
	FormatMKV  Format = "mkv"
	FormatMOV  Format = "mov"
)

// formats is the fixed, ordered set of output containers.
var formats = []Format{FormatWebM, FormatMP4, FormatAVI, FormatMKV, FormatMOV}

// Formats returns the supported output formats in presentation order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// Valid reports whether f is one of the supported output formats.
func (f Format) Valid() bool {
	for _, known := range formats {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFormat accepts an extension with or without a leading dot, in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if !f.Valid() {
		return "", fmt.Errorf("unsupported format %q (use webm, mp4, avi, mkv or mov)", s)
	}
	return f, nil
}

// Resolution is a frame size in pixels. The zero value means "unknown".
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// presets is the fixed, ordered set of target resolutions.
var presets = []Resolution{
	{640, 480},
	{1280, 720},
	{1920, 1080},
	{2560, 1440},
	{3840, 2160},
}

// Presets returns the target resolution presets, smallest first.
func Presets() []Resolution {
	out := make([]Resolution, len(presets))
	copy(out, presets)
	return out
}

// IsZero reports whether r carries no dimensions.
func (r Resolution) IsZero() bool { return r.Width == 0 && r.Height == 0 }

// IsPreset reports whether r is one of the target presets.
func (r Resolution) IsPreset() bool {
	for _, p := range presets {
		if r == p {
			return true
		}
	}
	return false
}

// String returns "WxH".
func (r Resolution) String() string {
	return strconv.Itoa(r.Width) + "x" + strconv.Itoa(r.Height)
}

// ScaleArg returns the "W:H" form used by the scale filter.
func (r Resolution) ScaleArg() string {
	return strconv.Itoa(r.Width) + ":" + strconv.Itoa(r.Height)
}

// ParseResolution parses "WxH" (case-insensitive x). Both dimensions must be
// positive; preset membership is checked by Request.Validate, not here.
func ParseResolution(s string) (Resolution, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Resolution{}, fmt.Errorf("invalid resolution %q (use WIDTHxHEIGHT, e.g. 1920x1080)", s)
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("invalid resolution %q (use WIDTHxHEIGHT, e.g. 1920x1080)", s)
	}
	return Resolution{Width: width, Height: height}, nil
}

// AudioPolicy controls whether audio streams are carried into the output.
type AudioPolicy string

const (
	AudioKeep   AudioPolicy = "keep"
	AudioRemove AudioPolicy = "remove"
)

// MetadataPolicy controls whether container metadata is carried over.
type MetadataPolicy string

const (
	MetadataKeep  MetadataPolicy = "keep"
	MetadataStrip MetadataPolicy = "strip"
)
