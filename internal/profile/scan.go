package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks dir and returns every .toml profile path, sorted.
// A missing directory yields no paths and no error.
func ScanDir(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			paths = append(paths, path)
		}
		return nil
	})

	sort.Strings(paths)
	return paths, err
}

// LoadResult pairs a scanned path with its parsed profile or the error
// that prevented parsing.
type LoadResult struct {
	Path    string
	Profile Profile
	Err     error
}

// LoadDir loads every profile under dir. Files that fail to parse are
// reported in their LoadResult rather than aborting the scan.
func LoadDir(dir string) ([]LoadResult, error) {
	paths, err := ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	results := make([]LoadResult, len(paths))
	for i, path := range paths {
		p, err := Load(path)
		results[i] = LoadResult{Path: path, Profile: p, Err: err}
	}
	return results, nil
}
