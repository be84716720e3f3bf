package ffmpeg

import (
	"regexp"
	"strings"
)

// FailureKind is a coarse category for a failed conversion, used for metric
// labels and user hints. The diagnostic text itself is always preserved.
type FailureKind string

const (
	FailureEncoder FailureKind = "encoder"
	FailureFilter  FailureKind = "filter"
	FailureInput   FailureKind = "input"
	FailureOutput  FailureKind = "output"
	FailureSpawn   FailureKind = "spawn"
	FailureUnknown FailureKind = "unknown"
)

// Pre-compiled patterns for classifying ffmpeg stderr. Checked in order by
// [Classify]; the first match wins.
var (
	reEncoderIssue = regexp.MustCompile(
		`(?i)Unknown encoder|Encoder .* not found|` +
			`Error while opening encoder|` +
			`codec not currently supported in container|` +
			`Could not find tag for codec`)

	reFilterIssue = regexp.MustCompile(
		`(?i)Error (re)?initializing filters?|` +
			`No such filter|` +
			`Failed to configure output pad|` +
			`Invalid too big or non positive size`)

	reInputIssue = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`moov atom not found|` +
			`Error opening input|` +
			`does not contain any stream`)

	reOutputIssue = regexp.MustCompile(
		`(?i)Permission denied|No space left on device|` +
			`Could not write header|` +
			`Unable to find a suitable output format|` +
			`Error opening output`)
)

// Classify maps captured stderr to a FailureKind.
func Classify(stderr string) FailureKind {
	switch {
	case reEncoderIssue.MatchString(stderr):
		return FailureEncoder
	case reFilterIssue.MatchString(stderr):
		return FailureFilter
	case reInputIssue.MatchString(stderr):
		return FailureInput
	case reOutputIssue.MatchString(stderr):
		return FailureOutput
	default:
		return FailureUnknown
	}
}

// Tail returns the last n non-empty lines of stderr, trimmed.
func Tail(stderr string, n int) []string {
	var lines []string
	for _, l := range strings.Split(stderr, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
