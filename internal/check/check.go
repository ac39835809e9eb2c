// Package check provides system diagnostics (the check subcommand) and
// pre-pipeline dependency validation (CheckDeps) for ffmpeg, ffprobe and
// the configured audio encoder.
package check

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/tool"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrEncoderUnusable = errors.New("audio encoder test encode failed")
)

// probeTimeout bounds each diagnostic invocation.
const probeTimeout = 30 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// LookPathFunc resolves a program name to an executable.
type LookPathFunc func(name string) error

// Checker runs diagnostics through a tool.Runner.
type Checker struct {
	Runner   tool.Runner
	LookPath LookPathFunc // Default tool.LookPath.
}

func (c *Checker) lookPath(name string) error {
	if c.LookPath != nil {
		return c.LookPath(name)
	}
	return tool.LookPath(name)
}

// CheckDeps runs Checker.CheckDeps with the real PATH lookup.
func CheckDeps(ctx context.Context, cfg *config.Config, r tool.Runner) error {
	return (&Checker{Runner: r}).CheckDeps(ctx, cfg)
}

// RunCheck runs Checker.RunCheck with the real PATH lookup.
func RunCheck(ctx context.Context, cfg *config.Config, r tool.Runner, log Logger) error {
	return (&Checker{Runner: r}).RunCheck(ctx, cfg, log)
}

// CheckDeps verifies that ffmpeg and ffprobe resolve and that the
// configured encoder survives a short synthetic encode. It returns a
// wrapped sentinel error on failure.
func (c *Checker) CheckDeps(ctx context.Context, cfg *config.Config) error {
	if err := c.lookPath(cfg.FFmpegPath); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFfmpegNotFound, cfg.FFmpegPath, err)
	}
	if err := c.lookPath(cfg.FFprobePath); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFfprobeNotFound, cfg.FFprobePath, err)
	}
	if err := c.testEncode(ctx, cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncoderUnusable, cfg.AudioEncoder, err)
	}
	return nil
}

// RunCheck runs the interactive check flow: prints availability of ffmpeg
// and ffprobe, the matching audio encoders, and the result of a test encode
// for each rate-control policy. It returns the first hard failure.
func (c *Checker) RunCheck(ctx context.Context, cfg *config.Config, log Logger) error {
	log.Info("=== System Check ===")

	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if err := c.checkFfmpeg(ctx, cfg, log); err != nil {
		keep(err)
		return firstErr
	}
	if err := c.checkFfprobe(cfg, log); err != nil {
		keep(err)
	}
	c.checkAudioEncoders(ctx, cfg, log)
	if err := c.checkTestEncodes(ctx, cfg, log); err != nil {
		keep(err)
	}
	return firstErr
}

// checkFfmpeg verifies ffmpeg resolves and logs its version string.
func (c *Checker) checkFfmpeg(ctx context.Context, cfg *config.Config, log Logger) error {
	if err := c.lookPath(cfg.FFmpegPath); err != nil {
		log.Error("ffmpeg not found (%s)", cfg.FFmpegPath)
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.FFmpegPath)
	}
	res, err := c.run(ctx, cfg.FFmpegPath, "-version")
	if err != nil {
		log.Warn("ffmpeg found but -version failed: %v", err)
		return nil
	}
	log.Success("ffmpeg: %s", firstLine(string(res.Stdout)))
	return nil
}

func (c *Checker) checkFfprobe(cfg *config.Config, log Logger) error {
	if err := c.lookPath(cfg.FFprobePath); err != nil {
		log.Error("ffprobe not found (%s)", cfg.FFprobePath)
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, cfg.FFprobePath)
	}
	log.Success("ffprobe: found")
	return nil
}

// checkAudioEncoders lists MP3-related encoders reported by ffmpeg plus
// the configured one.
func (c *Checker) checkAudioEncoders(ctx context.Context, cfg *config.Config, log Logger) {
	log.Info("Audio encoders:")
	res, err := c.run(ctx, cfg.FFmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	want := strings.ToLower(cfg.AudioEncoder)
	found := false
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "mp3") || strings.Contains(lower, "lame") || strings.Contains(lower, want) {
			log.Info("  %s", strings.TrimSpace(line))
		}
		if fields := strings.Fields(lower); len(fields) >= 2 && fields[1] == want {
			found = true
		}
	}
	if !found {
		log.Warn("Configured encoder %s is not listed", cfg.AudioEncoder)
	}
}

// checkTestEncodes runs a minimal encode per rate-control policy.
func (c *Checker) checkTestEncodes(ctx context.Context, cfg *config.Config, log Logger) error {
	var failed error
	for _, args := range [][]string{
		{"-b:a", cfg.CBRBitrate},
		{"-q:a", fmt.Sprint(cfg.VBRQuality)},
	} {
		label := strings.Join(args, " ")
		log.Info("Testing %s %s...", cfg.AudioEncoder, label)
		if err := c.testEncode(ctx, cfg, args...); err != nil {
			log.Error("%s %s test encode failed: %v", cfg.AudioEncoder, label, err)
			if failed == nil {
				failed = fmt.Errorf("%w: %s: %w", ErrEncoderUnusable, cfg.AudioEncoder, err)
			}
			continue
		}
		log.Success("%s %s works", cfg.AudioEncoder, label)
	}
	return failed
}

// testEncode encodes 0.1s of a lavfi sine tone through the configured
// encoder into the null muxer.
func (c *Checker) testEncode(ctx context.Context, cfg *config.Config, rateArgs ...string) error {
	_, err := c.run(ctx, cfg.FFmpegPath, TestEncodeArgs(cfg.AudioEncoder, rateArgs...)...)
	return err
}

// TestEncodeArgs returns the ffmpeg arguments for a minimal encoder test.
func TestEncodeArgs(encoder string, rateArgs ...string) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", encoder,
	}
	args = append(args, rateArgs...)
	return append(args, "-f", "null", "-")
}

func (c *Checker) run(ctx context.Context, name string, args ...string) (tool.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return c.Runner.Run(ctx, name, args...)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		return s[:idx]
	}
	return s
}
