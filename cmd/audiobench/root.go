package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/backmassage/audiobench/internal/check"
	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/display"
	"github.com/backmassage/audiobench/internal/logging"
	"github.com/backmassage/audiobench/internal/metrics"
	"github.com/backmassage/audiobench/internal/pipeline"
	"github.com/backmassage/audiobench/internal/tool"
)

// app holds the process-level collaborators so tests can swap them.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	runner   func(cfg *config.Config) tool.Runner
	lookPath check.LookPathFunc
}

func defaultApp() *app {
	return &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		runner: func(cfg *config.Config) tool.Runner {
			r := &tool.ExecRunner{Timeout: cfg.ToolTimeout}
			if cfg.Verbose {
				r.Tee = os.Stderr
			}
			return r
		},
	}
}

const flagConfig = "config"

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "audiobench",
		Short: "Compare CBR and VBR encodes of every audio file in a directory",
		Long: `audiobench scans a directory for audio files, encodes each one twice with
ffmpeg (a constant-bitrate pass and a variable-quality pass), and writes a
text report and a CSV report comparing the output sizes.

With no arguments it scans the current directory, writes encodes to
./output_test and reports to test_results.txt / test_results.csv.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBench(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	config.DefineFlags(pf)
	pf.String(flagConfig, "", "Config file (default: .audiobench.yaml in . or $HOME)")

	root.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Check ffmpeg, ffprobe and the audio encoder, then exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runCheck(cmd)
			},
		},
		&cobra.Command{
			Use:   "analyze",
			Short: "Probe every input file and print a bitrate table without encoding",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runAnalyze(cmd)
			},
		},
	)
	return root
}

// setup loads config from flags, env and file, and opens the logger.
func (a *app) setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	fs := cmd.Root().PersistentFlags()
	configFile, _ := fs.GetString(flagConfig)
	v, err := config.NewViper(fs, configFile)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLoggerTo(&cfg, a.stdout, a.stderr)
	if err != nil {
		return nil, nil, err
	}
	display.PrintBanner(a.stdout)
	return &cfg, log, nil
}

func (a *app) checker(cfg *config.Config) *check.Checker {
	return &check.Checker{Runner: a.runner(cfg), LookPath: a.lookPath}
}

func (a *app) runBench(cmd *cobra.Command) error {
	cfg, log, err := a.setup(cmd)
	if err != nil {
		return err
	}
	defer log.Close()
	ctx := cmd.Context()

	runID := uuid.NewString()
	log.Info("=== audiobench v%s ===", version)
	log.Info("Run: %s", runID)
	log.Info("In:  %s", cfg.ResolveInputDir())
	log.Info("Out: %s", cfg.OutputDir)
	log.Info("")

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		srv, err := m.Serve(ctx, cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		log.Info("Metrics: http://%s/metrics", srv.Addr())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("Metrics shutdown: %v", err)
			}
		}()
	}

	checker := a.checker(cfg)
	_, err = pipeline.Run(ctx, cfg, pipeline.Deps{
		Runner:   checker.Runner,
		Log:      log,
		Console:  a.stdout,
		Progress: a.stderr,
		Metrics:  m,
		RunID:    runID,
		Preflight: func(ctx context.Context) error {
			return checker.CheckDeps(ctx, cfg)
		},
	})
	if pipeline.IsInterrupted(err) {
		return fmt.Errorf("interrupted: %w", err)
	}
	return err
}

func (a *app) runCheck(cmd *cobra.Command) error {
	cfg, log, err := a.setup(cmd)
	if err != nil {
		return err
	}
	defer log.Close()
	return a.checker(cfg).RunCheck(cmd.Context(), cfg, log)
}

func (a *app) runAnalyze(cmd *cobra.Command) error {
	cfg, log, err := a.setup(cmd)
	if err != nil {
		return err
	}
	defer log.Close()
	_, err = pipeline.Analyze(cmd.Context(), cfg, pipeline.Deps{
		Runner:   a.runner(cfg),
		Log:      log,
		Console:  a.stdout,
		Progress: a.stderr,
	})
	return err
}
