package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/naming"
	"github.com/backmassage/audiobench/internal/planner"
)

// AudioFile is one discovered input.
type AudioFile struct {
	Path string
	Name string // Base name, as written to the reports.
	Stem string // Name without extension.
	Ext  string // Lowercase extension with leading dot.
}

// NewAudioFile describes the file at path.
func NewAudioFile(path string) AudioFile {
	return AudioFile{
		Path: path,
		Name: filepath.Base(path),
		Stem: naming.Stem(path),
		Ext:  strings.ToLower(filepath.Ext(path)),
	}
}

// discoverInputs runs Discover over the configured input directory. The
// output suffixes are always excluded, whatever the configured markers, so
// a later run never re-encodes an earlier run's outputs.
func discoverInputs(cfg *config.Config) (string, []AudioFile, error) {
	root := cfg.ResolveInputDir()
	markers := slices.Clone(cfg.ExcludeMarkers)
	for _, p := range planner.Policies {
		if !slices.Contains(markers, p.Suffix()) {
			markers = append(markers, p.Suffix())
		}
	}
	files, err := Discover(root, cfg.Extensions, markers)
	return root, files, err
}

// Discover walks inputDir recursively, keeps regular files whose lowercase
// extension is in extensions, drops any whose base name contains one of
// excludeMarkers (case-sensitive), and returns them sorted by path.
func Discover(inputDir string, extensions, excludeMarkers []string) ([]AudioFile, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		allowed[strings.ToLower(e)] = true
	}

	var paths []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !isRegular(path, d) {
			return nil
		}
		if !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if hasMarker(d.Name(), excludeMarkers) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	files := make([]AudioFile, len(paths))
	for i, p := range paths {
		files[i] = NewAudioFile(p)
	}
	return files, nil
}

// isRegular accepts regular files and symlinks that resolve to one.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func hasMarker(name string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}
