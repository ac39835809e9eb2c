package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/audiobench/internal/tool"
)

// ErrProbeFailed wraps every failure to obtain parseable ffprobe output.
var ErrProbeFailed = errors.New("probe failed")

// Args returns the ffprobe arguments used to inspect path.
func Args(path string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams", "-show_format",
		path,
	}
}

// Probe runs ffprobe (the binary named by ffprobePath) against path and
// returns the parsed result. A non-zero exit or undecodable output is an
// error wrapping ErrProbeFailed; a file with no streams is not.
func Probe(ctx context.Context, r tool.Runner, ffprobePath, path string) (*ProbeResult, error) {
	res, err := r.Run(ctx, ffprobePath, Args(path)...)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe %q: %w", ErrProbeFailed, path, err)
	}

	pr, err := ParseJSON(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrProbeFailed, path, err)
	}
	return pr, nil
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string            `json:"filename"`
	NbStreams  int               `json:"nb_streams"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

type ffprobeStream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
	BitsPerSample *int   `json:"bits_per_sample"`
	BitRate       string `json:"bit_rate"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{
		Format: FormatInfo{
			Filename:   raw.Format.Filename,
			NbStreams:  raw.Format.NbStreams,
			FormatName: raw.Format.FormatName,
			Duration:   parseFloat(raw.Format.Duration),
			Size:       parseInt64(raw.Format.Size),
			BitRate:    parseInt64(raw.Format.BitRate),
			Tags:       raw.Format.Tags,
		},
	}
	for i := range raw.Streams {
		s := &raw.Streams[i]
		pr.Streams = append(pr.Streams, Stream{
			Index:         s.Index,
			Codec:         s.CodecName,
			CodecType:     s.CodecType,
			SampleRate:    parseInt(s.SampleRate),
			Channels:      s.Channels,
			ChannelLayout: s.ChannelLayout,
			BitsPerSample: s.BitsPerSample,
			BitRate:       parseInt64(s.BitRate),
		})
	}
	return pr
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
