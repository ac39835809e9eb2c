// Package report formats benchmark results and appends them to the text
// and CSV report files.
package report

import (
	"strconv"
)

const bytesPerMB = 1024 * 1024

// Record is one reported input file.
type Record struct {
	Filename string // Base name of the input.
	Info     string // probe.AudioInfo description.
	CBRBytes int64
	VBRBytes int64
}

// CBRMB returns the CBR output size in MiB.
func (r Record) CBRMB() float64 { return ToMB(r.CBRBytes) }

// VBRMB returns the VBR output size in MiB.
func (r Record) VBRMB() float64 { return ToMB(r.VBRBytes) }

// Savings returns how much smaller the VBR output is than the CBR output,
// in percent rounded to one decimal.
func (r Record) Savings() float64 { return ComputeSavings(r.CBRMB(), r.VBRMB()) }

// ToMB converts a byte count to MiB (1024*1024 bytes), the unit the
// reports label "MB".
func ToMB(bytes int64) float64 {
	return float64(bytes) / bytesPerMB
}

// ComputeSavings returns ((a-b)/a)*100 rounded to one decimal place, or 0
// when a is 0. Negative results mean b is larger than a.
func ComputeSavings(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return Round1((a - b) / a * 100)
}

// Round1 rounds x to one decimal place. The exact binary value is
// rounded, so a true half such as 6.25 goes to the even digit (6.2).
func Round1(x float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return r
}

// FormatSize renders a size in MB with two decimals ("5.00").
func FormatSize(mb float64) string {
	return strconv.FormatFloat(mb, 'f', 2, 64)
}

// FormatSavings renders a percentage with one decimal and a % suffix ("30.0%").
func FormatSavings(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}
