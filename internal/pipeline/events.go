package pipeline

import (
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/sppd-tools/sppdparquet/internal/feed"
	"github.com/sppd-tools/sppdparquet/internal/util"
)

// Status is the terminal state of one period.
type Status int

const (
	StatusSucceeded Status = iota
	StatusSucceededWithSkips
	StatusFailedDownload
	StatusFailedExtraction
	StatusFailedWrite
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSucceededWithSkips:
		return "succeeded_with_skips"
	case StatusFailedDownload:
		return "failed_download"
	case StatusFailedExtraction:
		return "failed_extraction"
	case StatusFailedWrite:
		return "failed_write"
	default:
		return "unknown"
	}
}

// Failed reports whether the period produced no usable output.
func (s Status) Failed() bool {
	return s != StatusSucceeded && s != StatusSucceededWithSkips
}

// PeriodResult is the outcome of one period's run.
type PeriodResult struct {
	Period       string
	Status       Status
	Records      int64
	FilesParsed  int
	FilesSkipped int
	OutputPath   string
	Elapsed      time.Duration
	Err          error
}

// EventKind tags the progress events the pipeline emits.
type EventKind int

const (
	// EventPeriodsResolved fires once, after period selection. Total is
	// the number of periods that will run.
	EventPeriodsResolved EventKind = iota
	// EventDownloadsDone fires after the download phase. Done counts the
	// archives now present on disk.
	EventDownloadsDone
	// EventFileParsed fires per feed document within a period.
	EventFileParsed
	// EventPeriodDone fires when a period reaches a terminal state, with
	// Result set.
	EventPeriodDone
)

// Event is a progress notification. Consumers must drain the channel
// promptly; the pipeline blocks on sends.
type Event struct {
	Kind   EventKind
	Period string
	Done   int
	Total  int
	Result *PeriodResult
}

// Summary aggregates a whole run of one feed.
type Summary struct {
	Feed    feed.ProcurementType
	Periods []PeriodResult
	Elapsed time.Duration
}

// Failed returns the periods that produced no output.
func (s Summary) Failed() []PeriodResult {
	return lo.Filter(s.Periods, func(r PeriodResult, _ int) bool {
		return r.Status.Failed()
	})
}

// Records is the total record count across all periods.
func (s Summary) Records() int64 {
	return lo.SumBy(s.Periods, func(r PeriodResult) int64 { return r.Records })
}

// Log writes the closing summary in a single pass.
func (s Summary) Log(logger *slog.Logger) {
	counts := lo.CountValuesBy(s.Periods, func(r PeriodResult) string {
		return r.Status.String()
	})
	logger.Info("Run complete.",
		slog.String("feed", s.Feed.String()),
		slog.Int("periods", len(s.Periods)),
		slog.Int("failed", len(s.Failed())),
		slog.Int64("records", s.Records()),
		slog.Any("by_status", counts),
		slog.String("elapsed", util.FormatDuration(s.Elapsed)),
	)
	for _, r := range s.Failed() {
		logger.Error("Period failed.",
			slog.String("period", r.Period),
			slog.String("status", r.Status.String()),
			"error", r.Err,
		)
	}
}
