// Package pipeline discovers input audio, encodes each file under both
// rate-control policies, and writes the comparison reports.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/display"
	"github.com/backmassage/audiobench/internal/ffmpeg"
	"github.com/backmassage/audiobench/internal/logging"
	"github.com/backmassage/audiobench/internal/metrics"
	"github.com/backmassage/audiobench/internal/naming"
	"github.com/backmassage/audiobench/internal/planner"
	"github.com/backmassage/audiobench/internal/probe"
	"github.com/backmassage/audiobench/internal/report"
	"github.com/backmassage/audiobench/internal/tool"
)

// Deps carries the collaborators a run needs. Runner and Log are required.
type Deps struct {
	Runner   tool.Runner
	Log      *logging.Logger
	Console  io.Writer        // Receives each report block. Default os.Stdout.
	Progress io.Writer        // Progress bar sink when cfg.Progress. Default os.Stderr.
	Metrics  *metrics.Metrics // Optional.
	RunID    string           // Stamped into the text report header.
	Now      func() time.Time // Default time.Now.

	// Preflight, when set, runs once files are found and before any
	// output is written. A non-nil error aborts the run.
	Preflight func(context.Context) error
}

func (d Deps) withDefaults() Deps {
	if d.Console == nil {
		d.Console = os.Stdout
	}
	if d.Progress == nil {
		d.Progress = os.Stderr
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Run is the top-level batch entry point. It discovers files, processes
// them one at a time, and returns aggregate stats. The first per-file
// failure aborts the run unless cfg.KeepGoing is set; records written
// before the failure stay in the reports.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (RunStats, error) {
	deps = deps.withDefaults()
	log := deps.Log
	var stats RunStats

	root, files, err := discoverInputs(cfg)
	if err != nil {
		return stats, fmt.Errorf("discover %s: %w", root, err)
	}
	stats.Total = len(files)
	if len(files) == 0 {
		log.Warn("No audio files found!")
		return stats, nil
	}

	if deps.Preflight != nil {
		if err := deps.Preflight(ctx); err != nil {
			return stats, err
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output directory: %w", err)
	}
	w, err := report.Create(cfg.TextReport, cfg.CSVReport, report.Options{
		Started: deps.Now(),
		RunID:   deps.RunID,
		Console: deps.Console,
	})
	if err != nil {
		return stats, err
	}

	logBatchHeader(cfg, log, &stats)

	bar := newProgressBar(cfg, deps.Progress, len(files))
	resolver := naming.NewCollisionResolver()

	runErr := func() error {
		for i, f := range files {
			if ctx.Err() != nil {
				log.Warn("Interrupted")
				return ctx.Err()
			}
			stats.Current = i + 1
			bar.Describe(f.Name)

			rec, err := processFile(ctx, cfg, deps, f, resolver, &stats)
			bar.Add(1)
			if err != nil {
				if ctx.Err() != nil {
					log.Warn("Interrupted")
					return ctx.Err()
				}
				stats.Failed++
				deps.Metrics.IncFailed()
				if !cfg.KeepGoing {
					return fmt.Errorf("%s: %w", f.Path, err)
				}
				log.Error("Skipped %s: %v", f.Name, err)
				continue
			}

			if err := w.Write(rec); err != nil {
				return err
			}
			stats.add(rec.CBRBytes, rec.VBRBytes)
			deps.Metrics.IncReported(rec.Savings())
		}
		return nil
	}()
	bar.Finish()

	if err := w.Close(); err != nil && runErr == nil {
		runErr = err
	}

	logSummary(log, &stats)
	if runErr != nil {
		log.Warn("Partial reports kept in %s and %s", cfg.TextReport, cfg.CSVReport)
		return stats, runErr
	}
	log.Success("Reports saved to %s and %s", cfg.TextReport, cfg.CSVReport)
	return stats, nil
}

// processFile handles one input: sniff → probe → plan → encode CBR → encode VBR.
func processFile(
	ctx context.Context,
	cfg *config.Config,
	deps Deps,
	f AudioFile,
	resolver *naming.CollisionResolver,
	stats *RunStats,
) (report.Record, error) {
	log := deps.Log
	log.Info("[%d/%d] %s", stats.Current, stats.Total, f.Name)

	// --- Sniff: warn only, ffprobe has the final say ---
	if c, err := probe.Sniff(f.Path); err != nil {
		log.Debug("  Sniff failed: %v", err)
	} else if probe.ExtensionMismatch(f.Ext, c) {
		log.Warn("  Content looks like %s but extension is %s", c, f.Ext)
	}

	// --- Probe ---
	pr, err := probe.Probe(ctx, deps.Runner, cfg.FFprobePath, f.Path)
	if err != nil {
		return report.Record{}, err
	}
	info := pr.Info().Describe()
	log.Debug("  Info: %s", info)

	// --- Plan ---
	plan := planner.BuildPlan(cfg, f.Path, resolver)
	if plan.Stem != f.Stem {
		log.Warn("  Output name collision, writing as %q", plan.Stem)
	}

	// --- Encode each policy ---
	sizes := make(map[planner.Policy]int64, len(plan.Outputs))
	for _, out := range plan.Outputs {
		log.Debug("  %s -> %s", out.Policy, out.Path)
		res, err := ffmpeg.Encode(ctx, deps.Runner, cfg, f.Path, out)
		if err != nil {
			logStderr(log, res.Stderr)
			return report.Record{}, err
		}
		deps.Metrics.ObserveEncode(out.Policy.String(), res.Elapsed, res.Size)
		sizes[out.Policy] = res.Size
		log.Debug("  %s: %s in %s", out.Policy, display.FormatBytes(res.Size), res.Elapsed.Round(time.Millisecond))
	}

	return report.Record{
		Filename: f.Name,
		Info:     info,
		CBRBytes: sizes[planner.PolicyCBR],
		VBRBytes: sizes[planner.PolicyVBR],
	}, nil
}

// progressBar is the subset of *progressbar.ProgressBar the runner uses.
type progressBar interface {
	Describe(string)
	Add(int) error
	Finish() error
}

type noProgress struct{}

func (noProgress) Describe(string) {}
func (noProgress) Add(int) error   { return nil }
func (noProgress) Finish() error   { return nil }

func newProgressBar(cfg *config.Config, w io.Writer, total int) progressBar {
	if !cfg.Progress {
		return noProgress{}
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Encoding"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

func logStderr(log *logging.Logger, stderr string) {
	if stderr == "" || !log.Verbose() {
		return
	}
	log.Debug("Last ffmpeg output:")
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		log.Debug("  %s", l)
	}
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d files", stats.Total)
	log.Info("Encoder: %s -> .%s", cfg.AudioEncoder, cfg.OutputFormat)
	log.Info("CBR: -b:a %s | VBR: -q:a %d", cfg.CBRBitrate, cfg.VBRQuality)
	if cfg.KeepGoing {
		log.Info("Failures: log and continue")
	}
	log.Info("")
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d reported, %d failed (%d of %d files visited)",
		stats.Reported, stats.Failed, stats.Current, stats.Total)
	if stats.Reported == 0 {
		return
	}

	saved := stats.Saved()
	pct := report.ComputeSavings(report.ToMB(stats.TotalCBRBytes), report.ToMB(stats.TotalVBRBytes))
	if saved >= 0 {
		log.Success("  VBR saved %s overall (CBR %s -> VBR %s, %s)",
			display.FormatBytes(saved),
			display.FormatBytes(stats.TotalCBRBytes),
			display.FormatBytes(stats.TotalVBRBytes),
			display.FormatPercent(pct))
	} else {
		log.Warn("  VBR was %s larger overall (CBR %s -> VBR %s)",
			display.FormatBytes(-saved),
			display.FormatBytes(stats.TotalCBRBytes),
			display.FormatBytes(stats.TotalVBRBytes))
	}
}

// IsInterrupted reports whether err came from cancelling the run. A
// per-invocation tool timeout is a failure, not an interruption.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
