package downloader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sppd-tools/sppdparquet/internal/retry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noSleep(recorded *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*recorded = append(*recorded, d)
		return nil
	}
}

var testPolicy = retry.Policy{
	MaxRetries:   3,
	InitialDelay: time.Second,
	MaxDelay:     10 * time.Second,
}

func TestDownloadAllFetchesAndRenames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("zipbytes-" + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	var delays []time.Duration
	d := &Downloader{Client: srv.Client(), Policy: testPolicy, Sleep: noSleep(&delays)}

	targets := map[string]string{
		"2022":   srv.URL + "/licitaciones_2022.zip",
		"202401": srv.URL + "/licitaciones_202401.zip",
	}
	paths, err := d.DownloadAll(context.Background(), discardLogger(), dir, targets)
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	body, err := os.ReadFile(filepath.Join(dir, "2022.zip"))
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "zipbytes-/licitaciones_2022.zip" {
		t.Fatalf("unexpected body %q", body)
	}
	if entries, _ := filepath.Glob(filepath.Join(dir, "*.part")); len(entries) != 0 {
		t.Fatalf("leftover part files: %v", entries)
	}
	if len(delays) != 0 {
		t.Fatalf("unexpected retries: %v", delays)
	}
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	var delays []time.Duration
	d := &Downloader{Client: srv.Client(), Policy: testPolicy, Sleep: noSleep(&delays)}

	paths, err := d.DownloadAll(context.Background(), discardLogger(), dir, map[string]string{
		"2023": srv.URL + "/x_2023.zip",
	})
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if _, ok := paths["2023"]; !ok {
		t.Fatal("period missing from results")
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delays = %v, want %v", delays, want)
		}
	}
}

func TestDownloadGivesUpAfterBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	var delays []time.Duration
	d := &Downloader{Client: srv.Client(), Policy: testPolicy, Sleep: noSleep(&delays)}

	paths, err := d.DownloadAll(context.Background(), discardLogger(), dir, map[string]string{
		"2020": srv.URL + "/x_2020.zip",
	})
	if err == nil {
		t.Fatal("expected error after retry budget")
	}
	var derr *DownloadError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DownloadError, got %T", err)
	}
	if derr.Attempts != 4 {
		t.Fatalf("Attempts = %d, want 4", derr.Attempts)
	}
	if len(paths) != 0 {
		t.Fatalf("paths = %v", paths)
	}
	if len(delays) != 3 {
		t.Fatalf("delays = %v", delays)
	}
}

func TestDownloadDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	var delays []time.Duration
	d := &Downloader{Client: srv.Client(), Policy: testPolicy, Sleep: noSleep(&delays)}

	_, err := d.DownloadAll(context.Background(), discardLogger(), dir, map[string]string{
		"2019": srv.URL + "/x_2019.zip",
	})
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server called %d times, want 1", got)
	}
	if len(delays) != 0 {
		t.Fatalf("unexpected sleeps: %v", delays)
	}
}

func TestDownloadSkipsExistingZip(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "2021.zip")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := &Downloader{Client: srv.Client(), Policy: testPolicy}
	paths, err := d.DownloadAll(context.Background(), discardLogger(), dir, map[string]string{
		"2021": srv.URL + "/x_2021.zip",
	})
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if paths["2021"] != existing {
		t.Fatalf("paths = %v", paths)
	}
	if calls.Load() != 0 {
		t.Fatal("existing zip should not be re-fetched")
	}
	body, _ := os.ReadFile(existing)
	if string(body) != "old" {
		t.Fatal("existing zip was overwritten")
	}
}
