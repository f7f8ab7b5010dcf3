// Package inspector summarizes the Parquet output with DuckDB: row and
// contract counts per period file, plus the representative schema.
package inspector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sppd-tools/sppdparquet/internal/config"
	"github.com/sppd-tools/sppdparquet/internal/feed"

	_ "github.com/marcboeker/go-duckdb"
)

type periodSummary struct {
	period    string
	path      string
	rows      sql.NullInt64
	contracts sql.NullInt64
	minUpd    sql.NullString
	maxUpd    sql.NullString
	statsErr  error
}

// InspectParquet walks every feed's output directory and prints a
// per-period summary table. Files that cannot be read are reported in
// the table instead of aborting the whole inspection.
func InspectParquet(cfg config.Config, logger *slog.Logger) error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get duckdb connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `INSTALL parquet; LOAD parquet;`); err != nil {
		logger.Warn("Failed to install/load parquet extension.", "error", err)
	}

	var inspectErrs error
	for _, t := range feed.All() {
		if err := inspectFeed(ctx, conn, cfg, logger, t); err != nil {
			inspectErrs = errors.Join(inspectErrs, err)
		}
	}
	return inspectErrs
}

func inspectFeed(ctx context.Context, conn *sql.Conn, cfg config.Config, logger *slog.Logger, t feed.ProcurementType) error {
	dir := cfg.FeedOutputDir(t)
	l := logger.With(slog.String("feed", t.String()), slog.String("dir", dir))

	paths, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return fmt.Errorf("glob %s: %w", dir, err)
	}
	if len(paths) == 0 {
		l.Info("No parquet output found.")
		return nil
	}
	sort.Strings(paths)
	l.Info("Summarizing parquet output.", slog.Int("files", len(paths)))

	summaries := make([]*periodSummary, 0, len(paths))
	for _, path := range paths {
		s := &periodSummary{
			period: strings.TrimSuffix(filepath.Base(path), ".parquet"),
			path:   path,
		}
		statsSQL := fmt.Sprintf(
			`SELECT COUNT(*), COUNT(DISTINCT contract_id), MIN(updated), MAX(updated) FROM read_parquet('%s');`,
			escapePath(path),
		)
		if err := conn.QueryRowContext(ctx, statsSQL).Scan(&s.rows, &s.contracts, &s.minUpd, &s.maxUpd); err != nil {
			s.statsErr = err
			l.Error("Failed to read parquet stats.", slog.String("path", path), "error", err)
		}
		summaries = append(summaries, s)
	}

	fmt.Printf("\n=== %s (%s) ===\n", t.String(), dir)
	fmt.Printf("%-10s | %12s | %12s | %-25s | %-25s | %s\n",
		"Period", "Rows", "Contracts", "First Updated", "Last Updated", "Errors")
	fmt.Println(strings.Repeat("-", 110))
	for _, s := range summaries {
		if s.statsErr != nil {
			fmt.Printf("%-10s | %12s | %12s | %-25s | %-25s | %v\n", s.period, "-", "-", "-", "-", s.statsErr)
			continue
		}
		fmt.Printf("%-10s | %12d | %12d | %-25s | %-25s |\n",
			s.period, s.rows.Int64, s.contracts.Int64, nullStr(s.minUpd), nullStr(s.maxUpd))
	}

	if schema, err := describeSchema(ctx, conn, summaries[0].path); err == nil {
		fmt.Println("\n  Representative schema:")
		for _, line := range schema {
			fmt.Printf("    %s\n", line)
		}
	} else {
		l.Warn("Failed to describe schema.", "error", err)
	}
	return nil
}

func describeSchema(ctx context.Context, conn *sql.Conn, path string) ([]string, error) {
	rows, err := conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT column_name, column_type FROM (DESCRIBE SELECT * FROM read_parquet('%s'));`, escapePath(path)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("%-45s %s", name, typ))
	}
	return out, rows.Err()
}

func escapePath(p string) string {
	p = strings.ReplaceAll(p, `\`, `/`)
	return strings.ReplaceAll(p, `'`, `''`)
}

func nullStr(s sql.NullString) string {
	if !s.Valid {
		return "N/A"
	}
	return s.String
}
