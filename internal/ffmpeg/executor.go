package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/planner"
	"github.com/backmassage/audiobench/internal/tool"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Output  planner.Output
	Size    int64 // Bytes on disk after the encode.
	Stderr  string
	Elapsed time.Duration
}

// Encode runs ffmpeg for one planned output and measures the file it
// produced. A non-zero exit is an error wrapping ErrEncodeFailed (with a
// classified hint when stderr matches a known failure); a clean exit that
// leaves no file wraps ErrOutputMissing. A zero-byte output is returned as
// a success with Size 0.
func Encode(ctx context.Context, r tool.Runner, cfg *config.Config, inputPath string, out planner.Output) (ExecResult, error) {
	start := time.Now()
	res, err := r.Run(ctx, cfg.FFmpegPath, Build(cfg, inputPath, out)...)
	result := ExecResult{
		Output:  out,
		Stderr:  res.Stderr,
		Elapsed: time.Since(start),
	}
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		var exitErr *tool.ExitError
		if hint := Classify(res.Stderr); hint != "" && errors.As(err, &exitErr) {
			return result, fmt.Errorf("%w: %s %s (%s): %w", ErrEncodeFailed, out.Policy, out.Path, hint, err)
		}
		return result, fmt.Errorf("%w: %s %s: %w", ErrEncodeFailed, out.Policy, out.Path, err)
	}

	fi, err := os.Stat(out.Path)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrOutputMissing, out.Path, err)
	}
	result.Size = fi.Size()
	return result, nil
}
