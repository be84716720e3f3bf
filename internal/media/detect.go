package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// sourceExtensions lists the video extensions accepted as conversion sources
// (lowercase, with leading dot).
var sourceExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".flv":  true,
	".webm": true,
}

// HasSourceExtension reports whether path carries a known video extension.
func HasSourceExtension(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsVideoFile sniffs the file header. A recognized non-video type returns
// false even when the extension says otherwise; an unrecognized header falls
// back to the extension.
func IsVideoFile(path string) (bool, error) {
	kind, err := filetype.MatchFile(path)
	if err != nil {
		return false, fmt.Errorf("sniff %q: %w", path, err)
	}
	if kind == types.Unknown {
		return HasSourceExtension(path), nil
	}
	return kind.MIME.Type == "video", nil
}
