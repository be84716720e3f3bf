// Package ffmpeg builds the transcoder argument vector for a conversion
// request, runs the external tool through a swappable Runner, and classifies
// its diagnostic output.
//
// Types:
//   - Runner (capability to spawn the tool), ExecRunner, ExecResult
//   - FailureKind (encoder, filter, input, output, spawn, unknown)
//
// Functions:
//   - Build(source, Request, destination) → []string
//     Fixed order: preamble, -i, -b:v, -vf scale, [-an], [-map_metadata -1], output.
//   - FormatCommand(name, args) → string (shell-style display for dry runs)
//   - Classify(stderr) → FailureKind
//   - Tail(stderr, n) → last n non-empty lines
package ffmpeg
