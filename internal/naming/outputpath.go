package naming

import (
	"path/filepath"
	"strings"
)

// Stem returns the base name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath builds the path of one encoded output:
//
//	<outputDir>/<stem><suffix>.<format>
//
// format is the encoder's container extension without dot (e.g. "mp3");
// the input's own extension never appears in the result.
func OutputPath(outputDir, stem, suffix, format string) string {
	return filepath.Join(outputDir, stem+suffix+"."+format)
}
