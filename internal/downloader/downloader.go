// Package downloader discovers and fetches the period zips a feed
// publishes. Downloads are bounded, retried with exponential backoff,
// and land atomically so an interrupted run never leaves a torn zip.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sppd-tools/sppdparquet/internal/retry"
	"github.com/sppd-tools/sppdparquet/internal/util"
)

var commonUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36",
}

func randomUserAgent() string {
	return commonUserAgents[rand.Intn(len(commonUserAgents))]
}

// DownloadError reports a period whose zip could not be fetched after
// the retry budget was spent.
type DownloadError struct {
	Period   string
	URL      string
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download period %s (%s) after %d attempts: %v", e.Period, e.URL, e.Attempts, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Downloader fetches period zips. Zero values fall back to sane
// defaults; Sleep is injectable so tests run without waiting.
type Downloader struct {
	Client      *http.Client
	Policy      retry.Policy
	Concurrency int64
	Sleep       func(context.Context, time.Duration) error
}

func (d *Downloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return util.DefaultHTTPClient()
}

func (d *Downloader) sleep(ctx context.Context, delay time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, delay)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DownloadAll fetches every period zip into destDir, at most Concurrency
// at a time. A zip that already exists is skipped. It returns the local
// path per period that is now present on disk; failed periods are
// reported in the joined error and absent from the map.
func (d *Downloader) DownloadAll(ctx context.Context, logger *slog.Logger, destDir string, targets map[string]string) (map[string]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir %s: %w", destDir, err)
	}

	limit := d.Concurrency
	if limit <= 0 {
		limit = 4
	}
	sem := semaphore.NewWeighted(limit)

	var (
		mu     sync.Mutex
		paths  = make(map[string]string, len(targets))
		joined error
		wg     sync.WaitGroup
	)

	for p, zipURL := range targets {
		wg.Add(1)
		go func(p, zipURL string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				joined = errors.Join(joined, err)
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			l := logger.With(slog.String("period", p), slog.String("zip_url", zipURL))
			dest := filepath.Join(destDir, p+".zip")
			err := d.downloadOne(ctx, l, zipURL, dest, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				joined = errors.Join(joined, err)
				return
			}
			paths[p] = dest
		}(p, zipURL)
	}
	wg.Wait()

	return paths, joined
}

// downloadOne runs the retry loop for a single period zip.
func (d *Downloader) downloadOne(ctx context.Context, logger *slog.Logger, zipURL, dest, p string) error {
	if _, err := os.Stat(dest); err == nil {
		logger.Debug("zip already downloaded, skipping")
		return nil
	}

	start := time.Now()
	for attempt := 0; ; attempt++ {
		err := d.tryDownload(ctx, logger, zipURL, dest)
		switch retry.Classify(attempt, d.Policy, err) {
		case retry.Proceed:
			logger.Info("downloaded period zip",
				slog.Int("attempts", attempt+1),
				slog.Duration("duration", time.Since(start).Round(time.Millisecond)),
			)
			return nil
		case retry.RetryAfterDelay:
			delay := retry.Delay(attempt, d.Policy)
			logger.Warn("download attempt failed, backing off",
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay),
				slog.Any("error", err),
			)
			if serr := d.sleep(ctx, delay); serr != nil {
				return &DownloadError{Period: p, URL: zipURL, Attempts: attempt + 1, Err: serr}
			}
		default:
			return &DownloadError{Period: p, URL: zipURL, Attempts: attempt + 1, Err: err}
		}
	}
}

// tryDownload streams the zip to a .part file and renames it into place.
// Server-side and transport failures come back wrapped as transient;
// client errors and local I/O failures are final.
func (d *Downloader) tryDownload(ctx context.Context, logger *slog.Logger, zipURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", randomUserAgent())
	req.Header.Set("Accept", "application/zip,application/octet-stream,*/*")

	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("create %s: %w", part, err)
	}

	n, err := util.FetchTo(d.client(), req, f)
	closeErr := f.Close()
	if err != nil {
		os.Remove(part)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var se *util.StatusError
		if errors.As(err, &se) {
			if se.Code >= 500 {
				return &retry.Transient{Err: err}
			}
			return err
		}
		return &retry.Transient{Err: err}
	}
	if closeErr != nil {
		os.Remove(part)
		return fmt.Errorf("close %s: %w", part, closeErr)
	}

	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return fmt.Errorf("rename %s: %w", part, err)
	}
	logger.Debug("saved zip", slog.Float64("size_mb", util.MBFromBytes(n)))
	return nil
}
