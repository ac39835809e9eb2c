package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"typical track 9.5 MiB", 9961472, "9.5 MiB"},
		{"negative", -1536, "-1.5 KiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatBytesWithSign(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"positive", 1024 * 1024, "+ 1.0 MiB"},
		{"negative", -1024 * 1024, "- 1.0 MiB"},
		{"zero", 0, "0 B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytesWithSign(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytesWithSign(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatMBAndPercent(t *testing.T) {
	if got := FormatMB(5); got != "5.00 MB" {
		t.Errorf("FormatMB(5) = %q", got)
	}
	if got := FormatMB(3.456); got != "3.46 MB" {
		t.Errorf("FormatMB(3.456) = %q", got)
	}
	if got := FormatPercent(30); got != "30.0%" {
		t.Errorf("FormatPercent(30) = %q", got)
	}
	if got := FormatPercent(-12.34); got != "-12.3%" {
		t.Errorf("FormatPercent(-12.34) = %q", got)
	}
}

func TestFormatBitrateLabel(t *testing.T) {
	tests := []struct {
		name string
		kbps int64
		want string
	}{
		{"unknown", 0, "n/a"},
		{"mp3", 320, "320 kbps"},
		{"exactly 1 Mbps", 1000, "1.0 Mbps"},
		{"cd audio", 1411, "1.4 Mbps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBitrateLabel(tt.kbps)
			if got != tt.want {
				t.Errorf("FormatBitrateLabel(%d) = %q, want %q", tt.kbps, got, tt.want)
			}
		})
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	if !strings.Contains(buf.String(), `|_.__/`) {
		t.Errorf("banner missing art: %q", buf.String())
	}
}
