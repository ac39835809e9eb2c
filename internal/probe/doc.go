// Package probe inspects audio files with a single ffprobe JSON call and
// condenses the first stream into the short descriptive string written to
// the reports ("44.1kHz, Stereo, 16bit"). It also sniffs container magic
// bytes to catch files whose extension lies about their content.
package probe
