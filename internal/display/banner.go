// Package display renders human-facing output: the start-up banner, size and
// bitrate labels, and the bitrate rating shown next to a planned conversion.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/vconv/internal/term"
)

const banner = `__   _____ ___  _ ____   __
\ \ / / __/ _ \| '_ \ \ / /
 \ V / (_| (_) | | | \ V / 
  \_/ \___\___/|_| |_|\_/  
`

// PrintBanner writes the ASCII banner and version line to w, in cyan when
// colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Cyan+banner+term.NC)
	fmt.Fprintf(w, "%sv%s%s\n\n", term.Gray, version, term.NC)
}
