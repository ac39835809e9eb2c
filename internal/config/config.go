// Package config holds runtime configuration: defaults, flag/env/file
// loading, and validation. Defaults reproduce the classic benchmark's
// hardcoded constants so a bare invocation behaves the same way.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Validation errors returned by [Config.Validate].
var (
	ErrNoExtensions = errors.New("at least one audio extension is required")
	ErrNoOutputDir  = errors.New("output directory must not be empty")
	ErrNoReports    = errors.New("text and CSV report paths must not be empty")
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [Load], and passed by pointer into the pipeline. Nothing in
// the module keeps configuration in package-level state.
type Config struct {
	// Paths.
	InputDir   string // Default: "" (current directory).
	OutputDir  string // Default: "./output_test".
	TextReport string // Default: "test_results.txt".
	CSVReport  string // Default: "test_results.csv".

	// Discovery.
	Extensions     []string // Lowercase with leading dot. Default: .wav .flac .m4a .mp3.
	ExcludeMarkers []string // Case-sensitive filename substrings. Default: _cbr, _vbr.

	// Encoding.
	OutputFormat string // Encoder's native container/extension. Default: "mp3".
	AudioEncoder string // Default: "libmp3lame".
	CBRBitrate   string // Default: "320k".
	VBRQuality   int    // Default: 0 (highest quality for LAME).

	// External tools.
	FFmpegPath  string        // Default: "ffmpeg".
	FFprobePath string        // Default: "ffprobe".
	ToolTimeout time.Duration // Default: 0 (wait indefinitely).

	// Behavior.
	KeepGoing   bool   // Log and skip per-file failures instead of aborting.
	Progress    bool   // Show a progress bar on stderr.
	MetricsAddr string // Serve /metrics on this address during the run.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// DefaultConfig returns a Config whose values match the classic benchmark run.
func DefaultConfig() Config {
	return Config{
		InputDir:       "",
		OutputDir:      "./output_test",
		TextReport:     "test_results.txt",
		CSVReport:      "test_results.csv",
		Extensions:     []string{".wav", ".flac", ".m4a", ".mp3"},
		ExcludeMarkers: []string{"_cbr", "_vbr"},
		OutputFormat:   "mp3",
		AudioEncoder:   "libmp3lame",
		CBRBitrate:     "320k",
		VBRQuality:     0,
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		ColorMode:      ColorAuto,
	}
}

// ResolveInputDir returns the directory to scan. An empty InputDir means
// the current working directory.
func (c *Config) ResolveInputDir() string {
	if c.InputDir == "" {
		return "."
	}
	return c.InputDir
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges and canonicalizes the
// bitrate and extension list in place.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	bitrate, err := normalizeAudioBitrate(c.CBRBitrate)
	if err != nil {
		return err
	}
	c.CBRBitrate = bitrate

	if c.VBRQuality < 0 || c.VBRQuality > 9 {
		return fmt.Errorf("invalid VBR quality %d (use 0-9, 0 is best)", c.VBRQuality)
	}
	if c.ToolTimeout < 0 {
		return errors.New("tool timeout must not be negative")
	}

	c.Extensions = normalizeExtensions(c.Extensions)
	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}

	c.OutputFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.OutputFormat)), ".")
	if c.OutputFormat == "" {
		return errors.New("output format must not be empty")
	}
	if strings.TrimSpace(c.AudioEncoder) == "" {
		return errors.New("audio encoder must not be empty")
	}

	c.OutputDir = NormalizeDirArg(c.OutputDir)
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	c.InputDir = NormalizeDirArg(c.InputDir)

	if c.TextReport == "" || c.CSVReport == "" {
		return ErrNoReports
	}
	return nil
}

// normalizeAudioBitrate validates and canonicalizes user bitrate input.
// Accepted forms: "320", "320k", "320K", "320kbps". Output is "<n>k".
func normalizeAudioBitrate(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("CBR bitrate must not be empty")
	}
	if strings.HasSuffix(s, "kbps") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "kbps"))
	} else if strings.HasSuffix(s, "k") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid CBR bitrate %q (use positive Kbps value, e.g. 320k)", raw)
	}
	return fmt.Sprintf("%dk", n), nil
}

// normalizeExtensions lowercases entries, adds a leading dot where missing,
// and drops blanks and duplicates while keeping the original order.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
