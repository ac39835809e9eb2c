package ffmpeg

import (
	"errors"
	"regexp"
)

// Sentinel errors returned by Encode.
var (
	// ErrEncodeFailed wraps a non-zero ffmpeg exit (or a failure to start it).
	ErrEncodeFailed = errors.New("encode failed")
	// ErrOutputMissing means ffmpeg exited cleanly but left no output file.
	ErrOutputMissing = errors.New("encoded output missing")
)

// stderrHint pairs a pattern in ffmpeg's stderr with a short explanation.
type stderrHint struct {
	re   *regexp.Regexp
	hint string
}

// Pre-compiled classifiers for common ffmpeg failures, checked in order by
// [Classify]; the first match wins.
var stderrHints = []stderrHint{
	{regexp.MustCompile(`(?i)Unknown encoder|Encoder not found`), "audio encoder not available in this ffmpeg build"},
	{regexp.MustCompile(`(?i)No such file or directory`), "input or output path does not exist"},
	{regexp.MustCompile(`(?i)Permission denied`), "permission denied"},
	{regexp.MustCompile(`(?i)Invalid data found when processing input|could not find codec parameters|moov atom not found`), "input is not decodable audio"},
	{regexp.MustCompile(`(?i)does not contain any stream|Output file #0 does not contain any stream`), "input has no audio stream"},
	{regexp.MustCompile(`(?i)Invalid argument|Error setting option`), "encoder rejected the rate-control options"},
	{regexp.MustCompile(`(?i)No space left on device`), "output disk is full"},
}

// Classify returns a one-line explanation for a failed ffmpeg run, or ""
// when stderr matches no known pattern.
func Classify(stderr string) string {
	for _, h := range stderrHints {
		if h.re.MatchString(stderr) {
			return h.hint
		}
	}
	return ""
}
