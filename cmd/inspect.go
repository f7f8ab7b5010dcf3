package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sppd-tools/sppdparquet/internal/inspector"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the generated Parquet output using DuckDB",
	Long: `Opens an in-memory DuckDB and summarizes every period file under the
output directory: row counts, distinct contract folders, the updated
range and the representative schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()
		cfg := getConfig()

		if err := inspector.InspectParquet(cfg, logger); err != nil {
			return fmt.Errorf("inspection failed: %w", err)
		}
		return nil
	},
}
