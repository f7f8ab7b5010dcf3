package parser

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFeedFiles locates the feed documents under root: every .xml or
// .atom file (case-insensitive) inside root's immediate subdirectories,
// recursively. Files sitting directly in root are downloaded archives
// and other clutter, not feed documents, and are ignored.
func FindFeedFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := FeedFilesIn(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	sort.Strings(out)
	return out, nil
}

// FeedFilesIn recursively collects the feed documents inside one
// extraction directory.
func FeedFilesIn(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xml", ".atom":
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
