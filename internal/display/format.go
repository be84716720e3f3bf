package display

import (
	"fmt"
	"time"

	"github.com/backmassage/vconv/internal/media"
	"github.com/backmassage/vconv/internal/term"
)

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatBytes returns a human-readable size using binary units.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[i])
}

// FormatSizeChange describes output size relative to the source, e.g.
// "12.0 MiB -> 4.0 MiB (-67%)".
func FormatSizeChange(before, after int64) string {
	s := FormatBytes(before) + " -> " + FormatBytes(after)
	if before <= 0 {
		return s
	}
	pct := (float64(after) - float64(before)) / float64(before) * 100
	return fmt.Sprintf("%s (%+.0f%%)", s, pct)
}

// FormatBitrate returns a short label for kb/s (e.g. "800 kb/s", "2.5 Mb/s").
// Zero means the value is unknown.
func FormatBitrate(kbps int) string {
	switch {
	case kbps <= 0:
		return "unknown"
	case kbps < 1000:
		return fmt.Sprintf("%d kb/s", kbps)
	default:
		return fmt.Sprintf("%.1f Mb/s", float64(kbps)/1000)
	}
}

// FormatResolution returns "WxH", or "unknown" for the zero value.
func FormatResolution(r media.Resolution) string {
	if r.Width <= 0 || r.Height <= 0 {
		return "unknown"
	}
	return r.String()
}

// RatingLabel colors a bitrate rating: green good, yellow high, red excessive.
func RatingLabel(r media.Rating) string {
	color := term.Green
	switch r {
	case media.RatingHigh:
		color = term.Yellow
	case media.RatingExcessive:
		color = term.Red
	}
	return color + r.String() + term.NC
}

// FormatDuration renders d as "1h02m03s", "2m05s" or "4.2s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
