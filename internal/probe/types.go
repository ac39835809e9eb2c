package probe

import (
	"fmt"
	"strconv"
)

// UnknownInfo is the description used when ffprobe reports no streams.
const UnknownInfo = "Unknown Info"

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	NbStreams  int
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
	Tags       map[string]string
}

// Stream holds the parsed properties of one stream, in ffprobe order.
// BitsPerSample is nil when ffprobe omitted the key.
type Stream struct {
	Index         int
	Codec         string
	CodecType     string
	SampleRate    int
	Channels      int
	ChannelLayout string
	BitsPerSample *int
	BitRate       int64
}

// ProbeResult is the fully parsed output of a single ffprobe JSON call.
type ProbeResult struct {
	Format  FormatInfo
	Streams []Stream
}

// AudioInfo is the subset of stream properties shown in the reports.
type AudioInfo struct {
	Known         bool
	SampleRateHz  int
	Channels      int
	BitsPerSample *int
}

// Info extracts AudioInfo from the first stream. Known is false when the
// file has no streams.
func (p *ProbeResult) Info() AudioInfo {
	if p == nil || len(p.Streams) == 0 {
		return AudioInfo{}
	}
	s := p.Streams[0]
	return AudioInfo{
		Known:         true,
		SampleRateHz:  s.SampleRate,
		Channels:      s.Channels,
		BitsPerSample: s.BitsPerSample,
	}
}

// Describe renders the report string, e.g. "44.1kHz, Stereo, 16bit".
func (a AudioInfo) Describe() string {
	if !a.Known {
		return UnknownInfo
	}
	return fmt.Sprintf("%skHz, %s, %sbit", FormatKHz(a.SampleRateHz), ChannelLabel(a.Channels), BitDepthLabel(a.BitsPerSample))
}

// FormatKHz converts a sample rate in Hz to kHz with one decimal place.
func FormatKHz(hz int) string {
	return strconv.FormatFloat(float64(hz)/1000, 'f', 1, 64)
}

// ChannelLabel maps exactly two channels to "Stereo" and every other count,
// including surround layouts, to "Mono".
func ChannelLabel(channels int) string {
	if channels == 2 {
		return "Stereo"
	}
	return "Mono"
}

// BitDepthLabel passes the bit depth through, or "N/A" when absent.
func BitDepthLabel(bits *int) string {
	if bits == nil {
		return "N/A"
	}
	return strconv.Itoa(*bits)
}
