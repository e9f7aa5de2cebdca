package utils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/config"
)

// ArchiveExtension marks a txtar bundle of serialized programs.
const ArchiveExtension = ".txtar"

// HasInputExt reports whether path names a serialized program or an archive.
func HasInputExt(path string) bool {
	if strings.HasSuffix(path, ArchiveExtension) {
		return true
	}
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// ExpandInputs replaces every directory in paths by the input files it
// contains, recursively and in lexical order. Files are kept as given.
func ExpandInputs(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		var found []string
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && HasInputExt(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
