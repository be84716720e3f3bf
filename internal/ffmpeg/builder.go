package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/backmassage/vconv/internal/media"
)

// Build constructs the ffmpeg argument slice (without the binary name) for
// converting source into destination. The order is fixed:
//
//	-hide_banner -nostdin -y -i <source> -b:v <N>k -vf scale=<W>:<H> [-an] [-map_metadata -1] <destination>
//
// -y is safe because the destination is always a path the caller reserved
// for this job; it never points at a pre-existing user file.
func Build(source string, req media.Request, destination string) []string {
	args := make([]string, 0, 16)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y")

	// --- Input ---
	args = append(args, "-i", source)

	// --- Video bitrate and scale ---
	args = append(args,
		"-b:v", strconv.Itoa(req.Bitrate)+"k",
		"-vf", "scale="+req.Resolution.ScaleArg(),
	)

	// --- Optional stream/metadata drops ---
	if req.Audio == media.AudioRemove {
		args = append(args, "-an")
	}
	if req.Metadata == media.MetadataStrip {
		args = append(args, "-map_metadata", "-1")
	}

	// --- Output ---
	args = append(args, destination)
	return args
}

// FormatCommand renders name and args as a copy-pasteable shell line,
// quoting arguments that contain whitespace or shell metacharacters.
func FormatCommand(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(name))
	for _, a := range args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`&|;<>()*?[]#~!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
