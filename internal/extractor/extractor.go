// Package extractor unpacks period zips next to the archive. Extraction
// is idempotent: a destination directory that already exists is taken as
// a completed earlier run and left alone.
package extractor

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ExtractionError reports a failed archive, optionally down to the member
// that broke.
type ExtractionError struct {
	Archive string
	Member  string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("extract %s (member %s): %v", e.Archive, e.Member, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DestDir is where Extract unpacks a given archive: a sibling directory
// named after the zip without its extension.
func DestDir(zipPath string) string {
	return strings.TrimSuffix(zipPath, filepath.Ext(zipPath))
}

// Extract unpacks zipPath into its destination directory and returns the
// extracted file paths. Directory members are skipped. When only is
// non-empty, members whose base name is not listed are skipped too. A
// failure removes the partially written destination so a rerun starts
// clean.
func Extract(logger *slog.Logger, zipPath string, only []string) ([]string, error) {
	destDir := DestDir(zipPath)

	if _, err := os.Stat(destDir); err == nil {
		logger.Debug("already extracted, skipping", slog.String("dir", destDir))
		return collectFiles(destDir)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, &ExtractionError{Archive: zipPath, Err: err}
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, &ExtractionError{Archive: zipPath, Err: err}
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}

	var out []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if len(wanted) > 0 && !wanted[filepath.Base(f.Name)] {
			continue
		}
		target, err := enclosedPath(destDir, f.Name)
		if err != nil {
			os.RemoveAll(destDir)
			return nil, &ExtractionError{Archive: zipPath, Member: f.Name, Err: err}
		}
		if err := writeMember(f, target); err != nil {
			os.RemoveAll(destDir)
			return nil, &ExtractionError{Archive: zipPath, Member: f.Name, Err: err}
		}
		out = append(out, target)
	}

	logger.Debug("extracted archive",
		slog.String("zip", zipPath),
		slog.Int("files", len(out)),
	)
	return out, nil
}

// enclosedPath rejects member names that would escape destDir.
func enclosedPath(destDir, member string) (string, error) {
	name := filepath.FromSlash(member)
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute member path")
	}
	target := filepath.Join(destDir, name)
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("member path escapes destination")
	}
	return target, nil
}

func writeMember(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func collectFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, &ExtractionError{Archive: dir, Err: err}
	}
	return out, nil
}
