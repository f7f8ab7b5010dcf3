// Package cleanup removes a period's downloaded archive and extracted
// files once its Parquet output exists.
package cleanup

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Period deletes {downloadDir}/{period}.zip and the {downloadDir}/{period}/
// extraction directory. Failures are logged and swallowed: leftover raw
// files never fail a period whose output was already written.
func Period(logger *slog.Logger, downloadDir, period string) {
	l := logger.With(slog.String("period", period))

	archive := filepath.Join(downloadDir, period+".zip")
	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		l.Warn("Could not remove downloaded archive.",
			slog.String("path", archive), "error", err)
	}

	extracted := filepath.Join(downloadDir, period)
	if err := os.RemoveAll(extracted); err != nil {
		l.Warn("Could not remove extracted files.",
			slog.String("path", extracted), "error", err)
	}
}
