package cleanup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestPeriod(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := os.WriteFile(filepath.Join(dir, "202301.zip"), []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "202301", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "202301", "nested", "feed.xml"), []byte("<feed/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A different period's files must survive.
	if err := os.WriteFile(filepath.Join(dir, "202302.zip"), []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	Period(logger, dir, "202301")

	if _, err := os.Stat(filepath.Join(dir, "202301.zip")); !os.IsNotExist(err) {
		t.Errorf("archive still present, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "202301")); !os.IsNotExist(err) {
		t.Errorf("extraction dir still present, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "202302.zip")); err != nil {
		t.Errorf("unrelated archive removed: %v", err)
	}
}

func TestPeriodMissingFilesIsQuiet(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	Period(logger, t.TempDir(), "2019")
}
