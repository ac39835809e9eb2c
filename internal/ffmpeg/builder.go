package ffmpeg

import (
	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/planner"
)

// Build constructs the ffmpeg argument slice (without the program name)
// that encodes inputPath to out.Path under out's policy.
//
//	-hide_banner -nostdin -y -loglevel <level> -i <in> -c:a <encoder> <rate args> <out>
//
// -y makes ffmpeg overwrite any existing output without asking.
func Build(cfg *config.Config, inputPath string, out planner.Output) []string {
	args := make([]string, 0, 16)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y")
	if cfg.Verbose {
		args = append(args, "-loglevel", "info")
	} else {
		args = append(args, "-loglevel", "error")
	}

	// --- Input ---
	args = append(args, "-i", inputPath)

	// --- Audio codec and rate control ---
	args = append(args, "-c:a", cfg.AudioEncoder)
	args = append(args, out.Args...)

	// --- Output ---
	args = append(args, out.Path)
	return args
}
