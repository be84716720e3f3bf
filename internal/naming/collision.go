package naming

import (
	"sync"

	"github.com/backmassage/vconv/internal/media"
)

// Claims tracks destinations handed out during one run without creating
// anything on disk. Dry runs use it so two sources that map to the same
// name (clip.mp4 and clip.mov, both to webm) preview distinct outputs.
// All methods are goroutine-safe.
type Claims struct {
	mu     sync.Mutex
	owners map[string]string // destination → source that claimed it
}

// NewClaims creates a ready-to-use claim set.
func NewClaims() *Claims {
	return &Claims{owners: make(map[string]string)}
}

// Choose returns the first candidate that is neither on disk nor claimed by
// another source, and claims it for source. Asking again for the same
// source returns the same destination.
func (c *Claims) Choose(source string, format media.Format) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return firstFree(source, format, func(p string) (bool, error) {
		owner, claimed := c.owners[p]
		if claimed {
			return owner == source, nil
		}
		if exists(p) {
			return false, nil
		}
		c.owners[p] = source
		return true, nil
	})
}
