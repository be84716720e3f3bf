package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/vconv/internal/display"
	"github.com/backmassage/vconv/internal/media"
	"github.com/backmassage/vconv/internal/probe"
	"github.com/backmassage/vconv/internal/term"
)

// reportRow holds the probed and suggested values for one file.
type reportRow struct {
	Name      string
	Probe     probe.Result
	Suggested media.Request
}

// Analyze discovers source files, probes each one, and prints what was
// detected next to the request a conversion would start from. Bitrates far
// from the batch's interquartile range are flagged.
func (p *Pipeline) Analyze(ctx context.Context) {
	files, _, err := Discover(p.cfg.Inputs)
	if err != nil {
		p.log.Error("File discovery failed: %v", err)
		return
	}
	if len(files) == 0 {
		p.log.Warn("No video files found")
		return
	}

	total := len(files)
	p.log.Info("Probing %d files", total)

	isTTY := term.IsTerminal(os.Stdout)
	var rows []reportRow
	var bitrates []float64

	for i, path := range files {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress()
			}
			p.log.Warn("Interrupted")
			return
		}
		printProgress(isTTY, i+1, total, filepath.Base(path))

		res := p.prober.Inspect(ctx, path)
		rows = append(rows, reportRow{
			Name:      filepath.Base(path),
			Probe:     res,
			Suggested: p.cfg.ApplyOverrides(probe.SuggestRequest(path, res)),
		})
		if res.HasBitrate() {
			bitrates = append(bitrates, float64(res.Bitrate))
		}
	}
	if isTTY {
		clearProgress()
	}

	bounds := computeStats(bitrates)
	p.printReport(rows, bounds)
	p.printReportSummary(rows, bounds)
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func (p *Pipeline) printReport(rows []reportRow, bounds iqrBounds) {
	const (
		hName = "File"
		hBit  = "Bitrate"
		hRes  = "Resolution"
		hReq  = "Suggested"
	)
	nameW, bitW, resW := len(hName), len(hBit), len(hRes)
	for _, r := range rows {
		nameW = max(nameW, len(r.Name))
		bitW = max(bitW, len(display.FormatBitrate(r.Probe.Bitrate)))
		resW = max(resW, len(display.FormatResolution(r.Probe.Resolution)))
	}
	nameW = min(nameW, 50)

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %s", nameW, hName, bitW, hBit, resW, hRes, hReq)
	fmt.Fprintln(p.out, header)
	fmt.Fprintln(p.out, "  "+strings.Repeat("─", len(header)+16))

	for _, r := range rows {
		name := r.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}
		class := bounds.classify(float64(r.Probe.Bitrate))
		s := r.Suggested
		rating := media.Rate(s.Resolution, s.Bitrate)

		fmt.Fprintf(p.out, "  %-*s  %s  %-*s  %s %s @ %s [%s] %s\n",
			nameW, name,
			colorPad(display.FormatBitrate(r.Probe.Bitrate), bitW, class),
			resW, display.FormatResolution(r.Probe.Resolution),
			s.Format, s.Resolution, display.FormatBitrate(s.Bitrate),
			display.RatingLabel(rating),
			formatFlag(class),
		)
	}
	fmt.Fprintln(p.out)
}

func (p *Pipeline) printReportSummary(rows []reportRow, bounds iqrBounds) {
	var outliers, extremes, undetected int
	for _, r := range rows {
		if r.Probe.Coverage() != "full" {
			undetected++
		}
		switch bounds.classify(float64(r.Probe.Bitrate)) {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
	}

	p.log.Info("Probed %d files", len(rows))
	if bounds.valid {
		p.log.Info("  Bitrate IQR: %.0f - %.0f kb/s (outlier < %.0f or > %.0f)",
			bounds.q1, bounds.q3, bounds.outlierLo, bounds.outlierHi)
	}
	if undetected > 0 {
		p.log.Warn("  %d file(s) only partly detected; defaults fill the gaps", undetected)
	}
	if outliers > 0 {
		p.log.Warn("  %d bitrate outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		p.log.Error("  %d extreme bitrate outlier(s) flagged [!]", extremes)
	}
}

func formatFlag(flag string) string {
	switch flag {
	case "extreme":
		return term.Red + "[!]" + term.NC
	case "outlier":
		return term.Yellow + "[*]" + term.NC
	default:
		return ""
	}
}

// colorPad pads a plain string to width, then wraps in ANSI color. This
// ensures %-*s-style alignment works correctly regardless of escape sequences.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	switch class {
	case "extreme":
		return term.Red + padded + term.NC
	case "outlier":
		return term.Yellow + padded + term.NC
	default:
		return padded
	}
}

// printProgress shows a live probe counter. On a TTY it writes an
// inline \r-overwritten line; otherwise it is a no-op.
func printProgress(isTTY bool, current, total int, name string) {
	if !isTTY {
		return
	}
	width := term.Width(os.Stdout, 80)
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, current*100/total)

	maxName := 40
	if len(name) > maxName {
		name = name[:maxName-1] + "…"
	}
	status += name

	if len(status) < width {
		status += strings.Repeat(" ", width-len(status))
	}
	fmt.Fprintf(os.Stdout, "\r%s", status)
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress() {
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", term.Width(os.Stdout, 80)))
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
