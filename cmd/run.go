package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sppd-tools/sppdparquet/internal/feed"
	"github.com/sppd-tools/sppdparquet/internal/pipeline"
	"github.com/sppd-tools/sppdparquet/internal/ui"
)

var (
	runType     string
	runPeriods  []string
	runStart    string
	runEnd      string
	runProgress bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full download and conversion pipeline",
	Long: `Runs the complete pipeline for one or both feeds:
1. Discovers the period archives published on the landing page.
2. Downloads the selected archives, retrying transient failures.
3. Extracts and decomposes every Atom document into flattened records.
4. Writes batched Parquet files, consolidating one file per period.

Periods can be given explicitly (--period 2023 --period 202401) or as an
inclusive range (--start/--end); with neither, every published period
runs. Yearly periods (YYYY) cover past years, monthly ones (YYYYMM) the
current year.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()
		cfg := getConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		types := feed.All()
		if runType != "" {
			t, err := feed.ParseProcurementType(runType)
			if err != nil {
				return err
			}
			types = []feed.ProcurementType{t}
		}

		var runErrs error
		for _, t := range types {
			opts := pipeline.Options{
				Type:    t,
				Periods: runPeriods,
				Start:   runStart,
				End:     runEnd,
			}

			var summary pipeline.Summary
			var err error
			if runProgress {
				events := make(chan pipeline.Event, 64)
				done := make(chan struct{})
				go func() {
					defer close(done)
					summary, err = pipeline.Run(ctx, cfg, logger, opts, events)
					close(events)
				}()
				if uiErr := ui.Run(t.String(), events); uiErr != nil {
					logger.Warn("Progress display failed.", "error", uiErr)
				}
				// The display may quit before the run does; keep the
				// pipeline from blocking on event sends.
				for range events {
				}
				<-done
			} else {
				summary, err = pipeline.Run(ctx, cfg, logger, opts, nil)
			}

			if err != nil {
				runErrs = errors.Join(runErrs, fmt.Errorf("%s: %w", t, err))
				continue
			}
			if failed := summary.Failed(); len(failed) > 0 {
				runErrs = errors.Join(runErrs, fmt.Errorf("%s: %d of %d periods failed", t, len(failed), len(summary.Periods)))
			}
		}
		return runErrs
	},
}

func init() {
	runCmd.Flags().StringVarP(&runType, "type", "t", "", "feed to run: mc/minor-contracts or pt/public-tenders (default both)")
	runCmd.Flags().StringArrayVarP(&runPeriods, "period", "p", nil, "explicit period to run, YYYY or YYYYMM (repeatable)")
	runCmd.Flags().StringVar(&runStart, "start", "", "first period of the inclusive range")
	runCmd.Flags().StringVar(&runEnd, "end", "", "last period of the inclusive range")
	runCmd.Flags().BoolVar(&runProgress, "progress", false, "render interactive progress instead of plain logs")
}
