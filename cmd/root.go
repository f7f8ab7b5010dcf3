package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sppd-tools/sppdparquet/internal/config"
)

var (
	// Flags bound in init()
	cfgFile     string
	downloadDir string
	outputDir   string
	batchSize   int
	logFormat   string
	logLevel    string
	logOutput   string

	// Populated in PersistentPreRunE
	rootLogger *slog.Logger
	appConfig  config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sppdparquet",
	Short: "Download Spanish public procurement feeds and convert them to Parquet.",
	Long: `sppdparquet fetches the period archives published on the Spanish Ministry
of Finance contracting platform, decomposes their Atom/CODICE documents
and writes one flattened Parquet file per period.

The primary command is 'run', which executes the full pipeline for a
feed. 'periods' lists what the platform currently publishes and
'inspect' summarizes the Parquet output with DuckDB.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		switch strings.ToLower(logLevel) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var logWriter io.Writer = os.Stderr
		switch strings.ToLower(logOutput) {
		case "", "stderr":
		case "stdout":
			logWriter = os.Stdout
		default:
			f, err := os.OpenFile(logOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %s: %w", logOutput, err)
			}
			logWriter = f
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		if logFormat == "json" {
			handler = slog.NewJSONHandler(logWriter, opts)
		} else {
			handler = slog.NewTextHandler(logWriter, opts)
		}
		rootLogger = slog.New(handler)
		slog.SetDefault(rootLogger)

		var err error
		appConfig, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		// Flags beat the config file and environment.
		if cmd.Flags().Changed("download-dir") {
			appConfig.DownloadDir = downloadDir
		}
		if cmd.Flags().Changed("output-dir") {
			appConfig.OutputDir = outputDir
		}
		if cmd.Flags().Changed("batch-size") {
			appConfig.BatchSize = batchSize
		}
		if err := appConfig.Validate(); err != nil {
			return err
		}
		rootLogger.Debug("Configuration loaded.", slog.Any("config", appConfig))
		return nil
	},
}

// Execute wires up the child commands and runs the CLI. Called by
// main.main().
func Execute() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		if rootLogger != nil {
			rootLogger.Error("Command execution failed.", "error", err)
		} else {
			fmt.Fprintf(os.Stderr, "Command execution failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sppdparquet.hcl)")
	rootCmd.PersistentFlags().StringVar(&downloadDir, "download-dir", "", "directory for downloaded archives (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for parquet output (overrides config)")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0, "records per parquet batch file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format (text or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "stderr", "log output destination (stderr, stdout, or file path)")

	rootCmd.Version = "0.1.0"
}

func getLogger() *slog.Logger {
	if rootLogger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return rootLogger
}

func getConfig() config.Config {
	return appConfig
}
