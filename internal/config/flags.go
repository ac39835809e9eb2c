package config

// This file binds CLI flags, AUDIOBENCH_* environment variables, and an
// optional YAML config file into a single viper instance, then decodes
// that into a Config. Precedence: flag > env > file > DefaultConfig.

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (AUDIOBENCH_OUTPUT, …).
const EnvPrefix = "AUDIOBENCH"

// Flag names double as viper keys.
const (
	KeyInput       = "input"
	KeyOutput      = "output"
	KeyTextReport  = "text-report"
	KeyCSVReport   = "csv-report"
	KeyExtensions  = "extensions"
	KeyExclude     = "exclude"
	KeyFormat      = "format"
	KeyEncoder     = "encoder"
	KeyCBRBitrate  = "cbr-bitrate"
	KeyVBRQuality  = "vbr-quality"
	KeyFFmpeg      = "ffmpeg"
	KeyFFprobe     = "ffprobe"
	KeyTimeout     = "timeout"
	KeyKeepGoing   = "keep-going"
	KeyProgress    = "progress"
	KeyMetricsAddr = "metrics-addr"
	KeyVerbose     = "verbose"
	KeyColor       = "color"
	KeyLog         = "log"
)

// DefineFlags registers every configurable setting on fs, using the values
// from DefaultConfig as flag defaults.
func DefineFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	// Paths
	fs.String(KeyInput, d.InputDir, "Root directory to scan (default: current directory)")
	fs.StringP(KeyOutput, "o", d.OutputDir, "Directory for encoded outputs")
	fs.String(KeyTextReport, d.TextReport, "Plain-text report path")
	fs.String(KeyCSVReport, d.CSVReport, "CSV report path")

	// Discovery
	fs.StringSlice(KeyExtensions, d.Extensions, "Audio extensions to include (case-insensitive)")
	fs.StringSlice(KeyExclude, d.ExcludeMarkers, "Skip files whose name contains any of these (case-sensitive)")

	// Encoding
	fs.String(KeyFormat, d.OutputFormat, "Output container/extension")
	fs.String(KeyEncoder, d.AudioEncoder, "ffmpeg audio encoder")
	fs.String(KeyCBRBitrate, d.CBRBitrate, "Constant bitrate target (e.g. 320k)")
	fs.Int(KeyVBRQuality, d.VBRQuality, "Variable quality setting, 0 is best")

	// Tools
	fs.String(KeyFFmpeg, d.FFmpegPath, "ffmpeg binary")
	fs.String(KeyFFprobe, d.FFprobePath, "ffprobe binary")
	fs.Duration(KeyTimeout, d.ToolTimeout, "Per-invocation timeout for ffmpeg/ffprobe (0 = none)")

	// Behavior and display
	fs.Bool(KeyKeepGoing, false, "Log and skip files that fail instead of aborting")
	fs.Bool(KeyProgress, false, "Show a progress bar on stderr")
	fs.String(KeyMetricsAddr, "", "Serve Prometheus metrics on this address while running (e.g. :9110)")
	fs.BoolP(KeyVerbose, "v", false, "Verbose output")
	fs.String(KeyColor, string(d.ColorMode), "Colored logs: auto | always | never")
	fs.StringP(KeyLog, "l", "", "Append logs to file")
}

// NewViper returns a viper instance wired to fs and the AUDIOBENCH_*
// environment. configFile, when non-empty, is read as YAML; otherwise
// .audiobench.yaml is looked up in the working directory and $HOME.
// A missing default config file is not an error.
func NewViper(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".audiobench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	cfg.InputDir = v.GetString(KeyInput)
	cfg.OutputDir = v.GetString(KeyOutput)
	cfg.TextReport = v.GetString(KeyTextReport)
	cfg.CSVReport = v.GetString(KeyCSVReport)
	cfg.Extensions = splitList(v.GetStringSlice(KeyExtensions))
	cfg.ExcludeMarkers = splitList(v.GetStringSlice(KeyExclude))
	cfg.OutputFormat = v.GetString(KeyFormat)
	cfg.AudioEncoder = v.GetString(KeyEncoder)
	cfg.CBRBitrate = v.GetString(KeyCBRBitrate)
	cfg.VBRQuality = v.GetInt(KeyVBRQuality)
	cfg.FFmpegPath = v.GetString(KeyFFmpeg)
	cfg.FFprobePath = v.GetString(KeyFFprobe)
	cfg.ToolTimeout = v.GetDuration(KeyTimeout)
	cfg.KeepGoing = v.GetBool(KeyKeepGoing)
	cfg.Progress = v.GetBool(KeyProgress)
	cfg.MetricsAddr = v.GetString(KeyMetricsAddr)
	cfg.Verbose = v.GetBool(KeyVerbose)
	cfg.ColorMode = ColorMode(strings.ToLower(v.GetString(KeyColor)))
	cfg.LogFile = v.GetString(KeyLog)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitList flattens comma-separated entries. Viper splits env values on
// whitespace only, so AUDIOBENCH_EXTENSIONS=.wav,.flac arrives as one item.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
