// Package probe inspects a source file through the external tools and
// extracts the two facts used to seed a conversion request: the overall
// bitrate (kb/s) and the video frame size.
//
// Two strategies implement [Prober]:
//   - DiagnosticProber runs `ffmpeg -hide_banner -i <path>` and scrapes the
//     human-readable stream listing ffmpeg prints to stderr.
//   - JSONProber runs `ffprobe -print_format json` and reads the structured
//     format and stream sections.
//
// Inspection never fails: a missing tool, unreadable file, or unparseable
// output yields an empty [Result], and callers fall back to defaults via
// [SuggestRequest].
package probe
