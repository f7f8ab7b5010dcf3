// Package writer persists flattened contract folder records as Parquet,
// batching rows so memory stays bounded regardless of period size.
package writer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/sppd-tools/sppdparquet/internal/parser"
)

const parquetConcurrency = 4

// WriteError reports a failed Parquet write or consolidation step.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// BatchWriter accumulates records and flushes them as numbered batch
// files under {outputDir}/{period}/. Nothing touches the filesystem
// until the first flush, so a period with zero records leaves no
// directory behind.
type BatchWriter struct {
	logger    *slog.Logger
	batchDir  string
	batchSize int

	buf        []parser.ContractFolderRecord
	batchIndex int
	records    int64
}

// NewBatchWriter prepares a writer for one period. batchSize must be
// positive.
func NewBatchWriter(logger *slog.Logger, outputDir, period string, batchSize int) *BatchWriter {
	return &BatchWriter{
		logger:    logger.With(slog.String("period", period)),
		batchDir:  filepath.Join(outputDir, period),
		batchSize: batchSize,
		buf:       make([]parser.ContractFolderRecord, 0, batchSize),
	}
}

// Add buffers one record, flushing a batch file when the buffer is full.
func (w *BatchWriter) Add(rec parser.ContractFolderRecord) error {
	w.buf = append(w.buf, rec)
	if len(w.buf) >= w.batchSize {
		return w.flush()
	}
	return nil
}

// Close flushes any partial batch. The writer must not be used after.
func (w *BatchWriter) Close() error {
	return w.flush()
}

// BatchDir is where the batch files land.
func (w *BatchWriter) BatchDir() string { return w.batchDir }

// Batches is the number of batch files written so far.
func (w *BatchWriter) Batches() int { return w.batchIndex }

// Records is the total number of records flushed so far.
func (w *BatchWriter) Records() int64 { return w.records }

func (w *BatchWriter) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := os.MkdirAll(w.batchDir, 0755); err != nil {
		return &WriteError{Path: w.batchDir, Err: err}
	}

	path := filepath.Join(w.batchDir, fmt.Sprintf("batch_%d.parquet", w.batchIndex))
	if err := writeRecords(path, w.buf); err != nil {
		return err
	}

	w.logger.Debug("Flushed batch.",
		slog.String("path", path),
		slog.Int("records", len(w.buf)))

	w.records += int64(len(w.buf))
	w.batchIndex++
	w.buf = w.buf[:0]
	return nil
}

func writeRecords(path string, recs []parser.ContractFolderRecord) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	pw, err := writer.NewParquetWriter(fw, new(parser.ContractFolderRecord), parquetConcurrency)
	if err != nil {
		fw.Close()
		return &WriteError{Path: path, Err: err}
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range recs {
		if err := pw.Write(recs[i]); err != nil {
			pw.WriteStop()
			fw.Close()
			return &WriteError{Path: path, Err: err}
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := fw.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// ReadRecords loads every record from one Parquet file.
func ReadRecords(path string) ([]parser.ContractFolderRecord, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(parser.ContractFolderRecord), parquetConcurrency)
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	defer pr.ReadStop()

	recs := make([]parser.ContractFolderRecord, pr.GetNumRows())
	if len(recs) == 0 {
		return nil, nil
	}
	if err := pr.Read(&recs); err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	return recs, nil
}

// BatchFiles lists the batch files of a period directory in batch
// order. The numeric suffix decides the order, so batch_10 sorts after
// batch_9.
func BatchFiles(batchDir string) ([]string, error) {
	entries, err := os.ReadDir(batchDir)
	if err != nil {
		return nil, err
	}
	type batch struct {
		index int
		path  string
	}
	var batches []batch
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "batch_") || !strings.HasSuffix(name, ".parquet") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "batch_"), ".parquet"))
		if err != nil {
			continue
		}
		batches = append(batches, batch{index: idx, path: filepath.Join(batchDir, name)})
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].index < batches[j].index })

	paths := make([]string, len(batches))
	for i, b := range batches {
		paths[i] = b.path
	}
	return paths, nil
}

// Consolidate merges a period's batch files into a single
// {outputDir}/{period}.parquet and removes the batch directory. With no
// batch directory or no batch files it is a no-op and returns "".
func Consolidate(logger *slog.Logger, outputDir, period string) (string, error) {
	batchDir := filepath.Join(outputDir, period)
	if _, err := os.Stat(batchDir); os.IsNotExist(err) {
		return "", nil
	}

	paths, err := BatchFiles(batchDir)
	if err != nil {
		return "", &WriteError{Path: batchDir, Err: err}
	}
	if len(paths) == 0 {
		return "", nil
	}

	outPath := filepath.Join(outputDir, period+".parquet")
	fw, err := local.NewLocalFileWriter(outPath)
	if err != nil {
		return "", &WriteError{Path: outPath, Err: err}
	}
	pw, err := writer.NewParquetWriter(fw, new(parser.ContractFolderRecord), parquetConcurrency)
	if err != nil {
		fw.Close()
		return "", &WriteError{Path: outPath, Err: err}
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var total int64
	for _, path := range paths {
		recs, err := ReadRecords(path)
		if err != nil {
			pw.WriteStop()
			fw.Close()
			return "", err
		}
		for i := range recs {
			if err := pw.Write(recs[i]); err != nil {
				pw.WriteStop()
				fw.Close()
				return "", &WriteError{Path: outPath, Err: err}
			}
		}
		total += int64(len(recs))
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", &WriteError{Path: outPath, Err: err}
	}
	if err := fw.Close(); err != nil {
		return "", &WriteError{Path: outPath, Err: err}
	}

	if err := os.RemoveAll(batchDir); err != nil {
		return "", &WriteError{Path: batchDir, Err: err}
	}

	logger.Info("Consolidated period output.",
		slog.String("path", outPath),
		slog.Int("batches", len(paths)),
		slog.Int64("records", total))
	return outPath, nil
}
