package report

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// CSVHeader is the first row of every CSV report.
var CSVHeader = []string{"Filename", "Original_Info", "CBR_Size_MB", "VBR_Size_MB", "Savings_Percent"}

const ruleWidth = 60

// Writer owns the two report files for the duration of a run. Both are
// opened (and truncated) once by Create, appended to by Write, and flushed
// after every record so an aborted run keeps what it already reported.
type Writer struct {
	txtFile *os.File
	csvFile *os.File
	txt     *bufio.Writer
	csv     *csv.Writer
	console io.Writer
	count   int
}

// Options configures the report header and console echo.
type Options struct {
	Started time.Time // Stamped into the text header.
	RunID   string    // Optional; added to the text header when set.
	Console io.Writer // Receives each record's text block; nil discards.
}

// Create opens textPath and csvPath for writing and emits both headers.
func Create(textPath, csvPath string, opts Options) (*Writer, error) {
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return nil, fmt.Errorf("create CSV report: %w", err)
	}
	txtFile, err := os.Create(textPath)
	if err != nil {
		csvFile.Close()
		return nil, fmt.Errorf("create text report: %w", err)
	}

	console := opts.Console
	if console == nil {
		console = io.Discard
	}
	w := &Writer{
		txtFile: txtFile,
		csvFile: csvFile,
		txt:     bufio.NewWriter(txtFile),
		csv:     csv.NewWriter(csvFile),
		console: console,
	}
	w.csv.UseCRLF = true

	if err := w.csv.Write(CSVHeader); err != nil {
		w.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	fmt.Fprintf(w.txt, "Audio Test Report - %s\n", opts.Started.Format("2006-01-02 15:04:05.000000"))
	if opts.RunID != "" {
		fmt.Fprintf(w.txt, "Run: %s\n", opts.RunID)
	}
	w.txt.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	if err := w.flush(); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// TextBlock renders the human-readable block for r, including the
// trailing blank line.
func TextBlock(r Record) string {
	return fmt.Sprintf("File: %s\n - Info: %s\n - CBR: %s MB\n - VBR: %s MB\n - Saved: %s\n\n",
		r.Filename,
		r.Info,
		FormatSize(r.CBRMB()),
		FormatSize(r.VBRMB()),
		FormatSavings(r.Savings()),
	)
}

// CSVRow renders r as a CSV report row.
func CSVRow(r Record) []string {
	return []string{
		r.Filename,
		r.Info,
		FormatSize(r.CBRMB()),
		FormatSize(r.VBRMB()),
		FormatSavings(r.Savings()),
	}
}

// Write appends r to both reports, flushes them, and echoes the text block
// (without its trailing blank line) to the console.
func (w *Writer) Write(r Record) error {
	block := TextBlock(r)
	if _, err := w.txt.WriteString(block); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	if err := w.csv.Write(CSVRow(r)); err != nil {
		return fmt.Errorf("write CSV report: %w", err)
	}
	if err := w.flush(); err != nil {
		return err
	}
	w.count++
	fmt.Fprintln(w.console, strings.TrimSpace(block))
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int { return w.count }

func (w *Writer) flush() error {
	if err := w.txt.Flush(); err != nil {
		return fmt.Errorf("flush text report: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flush CSV report: %w", err)
	}
	return nil
}

// Close flushes and closes both files. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.txtFile == nil && w.csvFile == nil {
		return nil
	}
	errs := []error{w.flush()}
	if w.txtFile != nil {
		errs = append(errs, w.txtFile.Close())
		w.txtFile = nil
	}
	if w.csvFile != nil {
		errs = append(errs, w.csvFile.Close())
		w.csvFile = nil
	}
	return errors.Join(errs...)
}
