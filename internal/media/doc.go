// Package media holds the shared conversion data model: output formats,
// resolution presets, audio and metadata policies, the validated conversion
// Request, bitrate rating, and source file type detection.
//
// Types:
//   - Format (webm, mp4, avi, mkv, mov), Resolution, AudioPolicy,
//     MetadataPolicy, Request, Rating
//
// Functions:
//   - DefaultRequest() → Request
//   - (Request).Validate() → error wrapping ErrInvalidRequest
//   - Rate(Resolution, kbps) → Rating
//   - IsVideoFile(path) → (bool, error)
package media
