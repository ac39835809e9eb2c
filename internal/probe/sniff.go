package probe

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// Container is the content type detected from a file's leading bytes.
type Container string

const (
	ContainerUnknown Container = ""
	ContainerMP3     Container = "mp3"
	ContainerFLAC    Container = "flac"
	ContainerMP4     Container = "mp4"
	ContainerOgg     Container = "ogg"
	ContainerDSF     Container = "dsf"
)

// Sniff identifies the container of the file at path from its tag header
// magic. Files the tag reader does not recognize (WAV, untagged MP3,
// truncated files) yield ContainerUnknown without an error; only failing
// to open the file is reported.
func Sniff(path string) (Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return ContainerUnknown, fmt.Errorf("sniff %q: %w", path, err)
	}
	defer f.Close()

	format, fileType, err := tag.Identify(f)
	if err != nil {
		return ContainerUnknown, nil
	}

	switch fileType {
	case tag.MP3:
		return ContainerMP3, nil
	case tag.FLAC:
		return ContainerFLAC, nil
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		return ContainerMP4, nil
	case tag.OGG:
		return ContainerOgg, nil
	case tag.DSF:
		return ContainerDSF, nil
	}
	if format == tag.MP4 {
		return ContainerMP4, nil
	}
	return ContainerUnknown, nil
}

// expectedContainer lists the container each audited extension should hold.
// Extensions absent here (e.g. ".wav") are never reported as mismatched.
var expectedContainer = map[string]Container{
	".mp3":  ContainerMP3,
	".flac": ContainerFLAC,
	".m4a":  ContainerMP4,
	".m4b":  ContainerMP4,
	".ogg":  ContainerOgg,
}

// ExtensionMismatch reports whether a positively identified container
// contradicts the file extension ext (case-insensitive, with dot).
func ExtensionMismatch(ext string, got Container) bool {
	if got == ContainerUnknown {
		return false
	}
	want, ok := expectedContainer[strings.ToLower(ext)]
	return ok && want != got
}
