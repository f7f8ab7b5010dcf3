// Package pipeline runs the end-to-end flow for one procurement feed:
// discover the published period archives, download and extract the
// selected ones, decompose their Atom documents and write the flattened
// records as Parquet.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sppd-tools/sppdparquet/internal/cleanup"
	"github.com/sppd-tools/sppdparquet/internal/config"
	"github.com/sppd-tools/sppdparquet/internal/downloader"
	"github.com/sppd-tools/sppdparquet/internal/extractor"
	"github.com/sppd-tools/sppdparquet/internal/feed"
	"github.com/sppd-tools/sppdparquet/internal/parser"
	"github.com/sppd-tools/sppdparquet/internal/period"
	"github.com/sppd-tools/sppdparquet/internal/util"
	"github.com/sppd-tools/sppdparquet/internal/writer"
)

// Options selects what one run covers. Explicit Periods win over the
// Start/End range; with neither set, every published period runs.
type Options struct {
	Type    feed.ProcurementType
	Periods []string
	Start   string
	End     string

	// LandingURL overrides the feed's landing page, for tests.
	LandingURL string
	// Now is the clock used to validate explicit periods. Zero means
	// time.Now().
	Now time.Time
	// Client overrides the HTTP client, for tests.
	Client *http.Client
}

// Run executes the pipeline for one feed and returns a summary of every
// selected period. The error is non-nil only for failures that abort
// the whole run; individual period failures are carried in the summary.
// events may be nil.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options, events chan<- Event) (Summary, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return Summary{Feed: opts.Type}, err
	}
	logger = logger.With(slog.String("feed", opts.Type.String()))

	client := opts.Client
	if client == nil {
		client = util.DefaultHTTPClient()
	}

	landing := opts.LandingURL
	if landing == "" {
		landing = opts.Type.LandingURL()
	}
	available, err := downloader.PeriodZipsFromPage(ctx, client, logger, landing)
	if err != nil {
		return Summary{Feed: opts.Type}, fmt.Errorf("discover periods: %w", err)
	}

	selected, err := selectPeriods(available, opts)
	if err != nil {
		return Summary{Feed: opts.Type}, err
	}
	emit(events, Event{Kind: EventPeriodsResolved, Total: len(selected)})
	if len(selected) == 0 {
		logger.Info("No periods selected, nothing to do.")
		return Summary{Feed: opts.Type, Elapsed: time.Since(start)}, nil
	}
	logger.Info("Periods selected.", slog.Int("count", len(selected)))

	downloadDir := cfg.FeedDownloadDir(opts.Type)
	outputDir := cfg.FeedOutputDir(opts.Type)

	targets := make(map[string]string, len(selected))
	for _, p := range selected {
		targets[p] = available[p]
	}
	dl := downloader.Downloader{
		Client:      client,
		Policy:      cfg.RetryPolicy(),
		Concurrency: int64(cfg.ConcurrentDownloads),
	}
	archives, dlErr := dl.DownloadAll(ctx, logger, downloadDir, targets)
	if ctx.Err() != nil {
		return Summary{Feed: opts.Type}, ctx.Err()
	}
	failedDownloads := downloadErrors(dlErr)
	emit(events, Event{Kind: EventDownloadsDone, Done: len(archives), Total: len(selected)})

	summary := Summary{Feed: opts.Type}
	for _, p := range selected {
		periodStart := time.Now()
		l := logger.With(slog.String("period", p))

		res := PeriodResult{Period: p}
		archive, ok := archives[p]
		if !ok {
			res.Status = StatusFailedDownload
			res.Err = failedDownloads[p]
			if res.Err == nil {
				res.Err = dlErr
			}
		} else {
			res = runPeriod(ctx, cfg, l, p, archive, outputDir, events)
			if res.Err != nil && ctx.Err() != nil {
				return summary, ctx.Err()
			}
		}
		res.Elapsed = time.Since(periodStart)

		if !res.Status.Failed() && cfg.Cleanup {
			cleanup.Period(l, downloadDir, p)
		}

		l.Info("Period finished.",
			slog.String("status", res.Status.String()),
			slog.Int64("records", res.Records),
			slog.Int("files_parsed", res.FilesParsed),
			slog.Int("files_skipped", res.FilesSkipped),
			slog.String("elapsed", util.FormatDuration(res.Elapsed)),
		)
		summary.Periods = append(summary.Periods, res)
		emit(events, Event{Kind: EventPeriodDone, Period: p, Result: &res})
	}

	summary.Elapsed = time.Since(start)
	summary.Log(logger)
	return summary, nil
}

// selectPeriods resolves the run's period set against what the landing
// page actually publishes.
func selectPeriods(available map[string]string, opts Options) ([]string, error) {
	published := lo.Keys(available)
	sort.Strings(published)

	if len(opts.Periods) > 0 {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		out := make([]string, 0, len(opts.Periods))
		for _, raw := range opts.Periods {
			p, err := period.Parse(raw, now)
			if err != nil {
				return nil, err
			}
			if _, ok := available[p.String()]; !ok {
				return nil, &period.Error{
					Value:  raw,
					Reason: fmt.Sprintf("not published; available periods: %v", published),
				}
			}
			out = append(out, p.String())
		}
		sort.Strings(out)
		return lo.Uniq(out), nil
	}

	periods := lo.Map(published, func(s string, _ int) period.Period { return period.Period(s) })
	filtered, err := period.Filter(periods, opts.Start, opts.End)
	if err != nil {
		return nil, err
	}
	return lo.Map(filtered, func(p period.Period, _ int) string { return p.String() }), nil
}

// runPeriod extracts one archive and streams its documents into batch
// files, consolidating at the end when configured.
func runPeriod(ctx context.Context, cfg config.Config, logger *slog.Logger, p, archive, outputDir string, events chan<- Event) PeriodResult {
	res := PeriodResult{Period: p}

	if _, err := extractor.Extract(logger, archive, nil); err != nil {
		res.Status = StatusFailedExtraction
		res.Err = err
		return res
	}
	files, err := parser.FeedFilesIn(extractor.DestDir(archive))
	if err != nil {
		res.Status = StatusFailedExtraction
		res.Err = &extractor.ExtractionError{Archive: archive, Err: err}
		return res
	}
	logger.Info("Archive extracted.", slog.Int("feed_files", len(files)))

	bw := writer.NewBatchWriter(logger, outputDir, p, cfg.BatchSize)
	parsed, skipped, err := parseFiles(ctx, cfg, logger, p, files, bw, events)
	closeErr := bw.Close()
	res.FilesParsed = parsed
	res.FilesSkipped = skipped
	res.Records = bw.Records()

	switch {
	case err != nil:
		res.Status = StatusFailedWrite
		res.Err = err
		return res
	case closeErr != nil:
		res.Status = StatusFailedWrite
		res.Err = closeErr
		return res
	}

	res.OutputPath = bw.BatchDir()
	if cfg.Consolidate {
		path, err := writer.Consolidate(logger, outputDir, p)
		if err != nil {
			res.Status = StatusFailedWrite
			res.Err = err
			return res
		}
		res.OutputPath = path
	}

	if skipped > 0 {
		res.Status = StatusSucceededWithSkips
	} else {
		res.Status = StatusSucceeded
	}
	return res
}

// parseFiles fans the period's documents across a bounded parser pool.
// File reads hold a separate semaphore so disk pressure stays capped
// independently of CPU-bound parsing. Records funnel through a single
// collector goroutine; the batch writer is not safe for concurrent use.
func parseFiles(ctx context.Context, cfg config.Config, logger *slog.Logger, p string, files []string, bw *writer.BatchWriter, events chan<- Event) (parsed, skipped int, err error) {
	readSlots := int64(cfg.ReadConcurrency)
	if readSlots <= 0 {
		readSlots = int64(runtime.NumCPU())
	}
	parserThreads := cfg.ParserThreads
	if parserThreads <= 0 {
		parserThreads = runtime.NumCPU()
	}

	recCh := make(chan parser.ContractFolderRecord, cfg.BatchSize)
	var writeErr error
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for rec := range recCh {
			if writeErr != nil {
				continue
			}
			writeErr = bw.Add(rec)
		}
	}()

	readSem := semaphore.NewWeighted(readSlots)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parserThreads)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			records, perr := parseOne(gctx, readSem, f, cfg.KeepRawXML)
			if perr != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("Skipping feed file.", slog.String("file", f), "error", perr)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			for _, rec := range records {
				select {
				case recCh <- rec:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			mu.Lock()
			parsed++
			mu.Unlock()
			emit(events, Event{Kind: EventFileParsed, Period: p, Done: i + 1, Total: len(files)})
			return nil
		})
	}
	gErr := g.Wait()
	close(recCh)
	<-collectorDone

	if gErr != nil {
		return parsed, skipped, gErr
	}
	return parsed, skipped, writeErr
}

func parseOne(ctx context.Context, readSem *semaphore.Weighted, path string, keepRaw bool) ([]parser.ContractFolderRecord, error) {
	if err := readSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	readSem.Release(1)
	if err != nil {
		return nil, &parser.ParseError{File: path, Err: err}
	}
	records, err := parser.ParseDocument(data, keepRaw)
	if err != nil {
		return nil, &parser.ParseError{File: path, Err: err}
	}
	return records, nil
}

// downloadErrors splits the downloader's joined error back into
// per-period failures.
func downloadErrors(err error) map[string]error {
	out := make(map[string]error)
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if de, ok := e.(*downloader.DownloadError); ok {
			out[de.Period] = de
			return
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, sub := range joined.Unwrap() {
				walk(sub)
			}
		}
	}
	walk(err)
	return out
}

func emit(events chan<- Event, e Event) {
	if events != nil {
		events <- e
	}
}
