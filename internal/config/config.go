// Package config loads pipeline settings from defaults, an optional HCL
// file and SPPD_* environment variables, in that order. Command flags
// are applied on top by the cmd layer.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"

	"github.com/sppd-tools/sppdparquet/internal/feed"
	"github.com/sppd-tools/sppdparquet/internal/retry"
)

// Config carries every knob the pipeline reads.
type Config struct {
	DownloadDir string `hcl:"download_dir" env:"DOWNLOAD_DIR" default:"data/tmp"`
	OutputDir   string `hcl:"output_dir" env:"OUTPUT_DIR" default:"data/parquet"`

	BatchSize           int `hcl:"batch_size" env:"BATCH_SIZE" default:"100"`
	MaxRetries          int `hcl:"max_retries" env:"MAX_RETRIES" default:"3"`
	RetryInitialDelayMS int `hcl:"retry_initial_delay_ms" env:"RETRY_INITIAL_DELAY_MS" default:"1000"`
	RetryMaxDelayMS     int `hcl:"retry_max_delay_ms" env:"RETRY_MAX_DELAY_MS" default:"10000"`

	ConcurrentDownloads int `hcl:"concurrent_downloads" env:"CONCURRENT_DOWNLOADS" default:"4"`
	ReadConcurrency     int `hcl:"read_concurrency" env:"READ_CONCURRENCY" default:"0"`
	ParserThreads       int `hcl:"parser_threads" env:"PARSER_THREADS" default:"0"`

	Consolidate bool `hcl:"consolidate" env:"CONSOLIDATE" default:"true"`
	Cleanup     bool `hcl:"cleanup" env:"CLEANUP" default:"true"`
	KeepRawXML  bool `hcl:"keep_raw_xml" env:"KEEP_RAW_XML" default:"false"`
}

// ValidationError reports a rejected setting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
}

// Load reads the configuration. path may be empty; a missing file at the
// default location is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	files := []string{"sppdparquet.hcl"}
	if path != "" {
		files = []string{path}
	}
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:          "SPPD",
		Files:              files,
		AllowUnknownFields: true,
		SkipFlags:          true,
		FailOnFileNotFound: path != "",
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return &ValidationError{Field: "batch_size", Reason: "must be positive"}
	}
	if c.MaxRetries < 0 {
		return &ValidationError{Field: "max_retries", Reason: "must not be negative"}
	}
	if c.RetryInitialDelayMS <= 0 {
		return &ValidationError{Field: "retry_initial_delay_ms", Reason: "must be positive"}
	}
	if c.RetryMaxDelayMS < c.RetryInitialDelayMS {
		return &ValidationError{Field: "retry_max_delay_ms", Reason: "must be at least retry_initial_delay_ms"}
	}
	if c.ConcurrentDownloads <= 0 {
		return &ValidationError{Field: "concurrent_downloads", Reason: "must be positive"}
	}
	if c.ReadConcurrency < 0 {
		return &ValidationError{Field: "read_concurrency", Reason: "must not be negative"}
	}
	if c.ParserThreads < 0 {
		return &ValidationError{Field: "parser_threads", Reason: "must not be negative"}
	}
	if c.DownloadDir == "" {
		return &ValidationError{Field: "download_dir", Reason: "must not be empty"}
	}
	if c.OutputDir == "" {
		return &ValidationError{Field: "output_dir", Reason: "must not be empty"}
	}
	return nil
}

// RetryPolicy converts the millisecond settings into the downloader's policy.
func (c Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:   c.MaxRetries,
		InitialDelay: time.Duration(c.RetryInitialDelayMS) * time.Millisecond,
		MaxDelay:     time.Duration(c.RetryMaxDelayMS) * time.Millisecond,
	}
}

// FeedDownloadDir is where a feed's zips land and get extracted.
func (c Config) FeedDownloadDir(t feed.ProcurementType) string {
	return filepath.Join(c.DownloadDir, t.Dir())
}

// FeedOutputDir is where a feed's parquet files are written.
func (c Config) FeedOutputDir(t feed.ProcurementType) string {
	return filepath.Join(c.OutputDir, t.Dir())
}
