package display

import (
	"fmt"
	"io"

	"github.com/backmassage/audiobench/internal/logging"
)

// PrintBanner writes the ASCII art banner to w; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	if logging.Magenta != "" {
		fmt.Fprint(w, "\033[1;95m")
	}
	fmt.Fprint(w, `                 _ _       _                     _
  __ _ _   _  __| (_) ___ | |__   ___ _ __   ___| |__
 / _`+"`"+` | | | |/ _`+"`"+` | |/ _ \| '_ \ / _ \ '_ \ / __| '_ \
| (_| | |_| | (_| | | (_) | |_) |  __/ | | | (__| | | |
 \__,_|\__,_|\__,_|_|\___/|_.__/ \___|_| |_|\___|_| |_|
`)
	if logging.Magenta != "" {
		fmt.Fprintln(w, logging.NC)
	}
}
