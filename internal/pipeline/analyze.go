package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/display"
	"github.com/backmassage/audiobench/internal/logging"
	"github.com/backmassage/audiobench/internal/probe"
)

// fileRow holds the probed per-file data for the analysis table.
type fileRow struct {
	Name      string
	Container string
	Codec     string
	Info      string
	Kbps      int64
}

// AnalyzeResult summarizes an Analyze pass.
type AnalyzeResult struct {
	Probed     int
	Skipped    int
	Mismatched int // Files whose content contradicts their extension.
	Outliers   int
	Extremes   int
}

// Analyze discovers input files, probes each one without encoding, and
// prints a table of container, codec, stream description and bitrate with
// IQR-based bitrate outlier flags. Probe failures are skipped.
func Analyze(ctx context.Context, cfg *config.Config, deps Deps) (AnalyzeResult, error) {
	deps = deps.withDefaults()
	log := deps.Log
	var res AnalyzeResult

	root, files, err := discoverInputs(cfg)
	if err != nil {
		return res, fmt.Errorf("discover %s: %w", root, err)
	}
	if len(files) == 0 {
		log.Warn("No audio files found!")
		return res, nil
	}

	log.Info("Analyzing %d files in %s", len(files), root)

	bar := newProgressBar(cfg, deps.Progress, len(files))
	var rows []fileRow
	var kbpsVals []float64

	for _, f := range files {
		if ctx.Err() != nil {
			bar.Finish()
			log.Warn("Interrupted")
			return res, ctx.Err()
		}
		bar.Describe(f.Name)

		row := fileRow{Name: f.Name, Container: "?"}
		if c, err := probe.Sniff(f.Path); err == nil && c != probe.ContainerUnknown {
			row.Container = string(c)
			if probe.ExtensionMismatch(f.Ext, c) {
				res.Mismatched++
				row.Container += "!"
			}
		}

		pr, err := probe.Probe(ctx, deps.Runner, cfg.FFprobePath, f.Path)
		bar.Add(1)
		if err != nil {
			if ctx.Err() != nil {
				bar.Finish()
				return res, ctx.Err()
			}
			res.Skipped++
			log.Warn("Skip (probe failed): %s", f.Name)
			continue
		}

		row.Info = pr.Info().Describe()
		row.Kbps = pr.Format.BitRate / 1000
		if len(pr.Streams) > 0 {
			row.Codec = pr.Streams[0].Codec
			if row.Kbps <= 0 {
				row.Kbps = pr.Streams[0].BitRate / 1000
			}
		}
		rows = append(rows, row)
		if row.Kbps > 0 {
			kbpsVals = append(kbpsVals, float64(row.Kbps))
		}
	}
	bar.Finish()

	res.Probed = len(rows)
	if len(rows) == 0 {
		log.Warn("No files could be probed")
		return res, nil
	}

	stats := computeStats(kbpsVals)
	printAnalysisTable(deps.Console, rows, stats)
	res.Outliers, res.Extremes = countFlags(rows, stats)
	printAnalysisSummary(log, res, stats)
	return res, nil
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func countFlags(rows []fileRow, b iqrBounds) (outliers, extremes int) {
	for _, r := range rows {
		switch b.classify(float64(r.Kbps)) {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
	}
	return outliers, extremes
}

func printAnalysisTable(w io.Writer, rows []fileRow, b iqrBounds) {
	nameW := len("File")
	ctW := len("Container")
	codecW := len("Codec")
	infoW := len("Stream")
	rateW := len("Bitrate")

	for _, r := range rows {
		nameW = max(nameW, utf8.RuneCountInString(r.Name))
		ctW = max(ctW, utf8.RuneCountInString(r.Container))
		codecW = max(codecW, utf8.RuneCountInString(r.Codec))
		infoW = max(infoW, utf8.RuneCountInString(r.Info))
		rateW = max(rateW, utf8.RuneCountInString(display.FormatBitrateLabel(r.Kbps)))
	}
	if nameW > 50 {
		nameW = 50
	}

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %-*s",
		nameW, "File",
		ctW, "Container",
		codecW, "Codec",
		infoW, "Stream",
		rateW, "Bitrate",
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", utf8.RuneCountInString(header)-2))

	for _, r := range rows {
		name := truncateName(r.Name, nameW)
		class := b.classify(float64(r.Kbps))

		// Pad the plain text first, then wrap in ANSI color, so escape
		// bytes do not count toward the column width.
		fmt.Fprintf(w, "  %-*s  %-*s  %-*s  %-*s  %s  %s\n",
			nameW, name,
			ctW, r.Container,
			codecW, r.Codec,
			infoW, r.Info,
			colorPad(display.FormatBitrateLabel(r.Kbps), rateW, class),
			formatFlag(class),
		)
	}
	fmt.Fprintln(w)
}

func printAnalysisSummary(log *logging.Logger, res AnalyzeResult, b iqrBounds) {
	log.Info("Analyzed %d files (%d skipped)", res.Probed, res.Skipped)
	if b.valid {
		log.Info("  Bitrate IQR: %.0f – %.0f kbps (outlier < %.0f or > %.0f)",
			b.q1, b.q3, b.outlierLo, b.outlierHi)
	}
	if res.Mismatched > 0 {
		log.Warn("  %d file(s) whose content does not match the extension [!]", res.Mismatched)
	}
	if res.Outliers > 0 {
		log.Warn("  %d outlier(s) flagged [*]", res.Outliers)
	}
	if res.Extremes > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", res.Extremes)
	}
	if res.Outliers == 0 && res.Extremes == 0 {
		log.Success("  No outliers detected")
	}
}

// truncateName shortens name to width runes, marking the cut with "…".
// fmt pads by runes, so widths are counted the same way.
func truncateName(name string, width int) string {
	runes := []rune(name)
	if len(runes) <= width {
		return name
	}
	return string(runes[:width-1]) + "…"
}

func formatFlag(class string) string {
	switch class {
	case "extreme":
		return logging.Red + "[!]" + logging.NC
	case "outlier":
		return logging.Yellow + "[*]" + logging.NC
	default:
		return ""
	}
}

func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	switch class {
	case "extreme":
		return logging.Red + padded + logging.NC
	case "outlier":
		return logging.Yellow + padded + logging.NC
	default:
		return padded
	}
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
