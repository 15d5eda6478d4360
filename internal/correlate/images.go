package correlate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultImageExtensions are the extensions ListImages accepts when none are given.
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png"}

// ListImages returns the names of files in dir whose extension matches one of
// exts case-insensitively, sorted lexicographically.
func ListImages(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultImageExtensions
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
