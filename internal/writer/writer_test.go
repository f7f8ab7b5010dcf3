package writer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sppd-tools/sppdparquet/internal/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func str(s string) *string { return &s }

func sampleRecord(i int) parser.ContractFolderRecord {
	id := fmt.Sprintf("entry-%d", i)
	return parser.ContractFolderRecord{
		EntryID:    str(id),
		EntryTitle: str("Contract " + id),
		ContractID: str(fmt.Sprintf("EXP/2023/%d", i)),
		ProjectLots: []parser.ProjectLot{
			{ID: str("1"), Name: str("Lote uno")},
		},
		TenderResults: []parser.TenderResult{
			{ResultID: str("1"), ResultLotID: str("1"), WinningParty: str("Constructora SL")},
		},
	}
}

func TestBatchWriterFlushesAtBatchSize(t *testing.T) {
	out := t.TempDir()
	bw := NewBatchWriter(testLogger(), out, "202301", 2)

	for i := 0; i < 5; i++ {
		if err := bw.Add(sampleRecord(i)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := bw.Batches(); got != 3 {
		t.Errorf("batches = %d, want 3", got)
	}
	if got := bw.Records(); got != 5 {
		t.Errorf("records = %d, want 5", got)
	}

	paths, err := BatchFiles(filepath.Join(out, "202301"))
	if err != nil {
		t.Fatalf("BatchFiles: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("got %d batch files, want 3", len(paths))
	}
	if filepath.Base(paths[0]) != "batch_0.parquet" || filepath.Base(paths[2]) != "batch_2.parquet" {
		t.Errorf("unexpected batch names: %v", paths)
	}

	recs, err := ReadRecords(paths[2])
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("last batch has %d records, want 1", len(recs))
	}
	if recs[0].EntryID == nil || *recs[0].EntryID != "entry-4" {
		t.Errorf("last record id = %v", recs[0].EntryID)
	}
}

func TestBatchWriterNoRecordsNoDir(t *testing.T) {
	out := t.TempDir()
	bw := NewBatchWriter(testLogger(), out, "202301", 10)
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "202301")); !os.IsNotExist(err) {
		t.Errorf("batch dir should not exist, stat err = %v", err)
	}
}

func TestConsolidate(t *testing.T) {
	out := t.TempDir()
	bw := NewBatchWriter(testLogger(), out, "2022", 2)
	for i := 0; i < 5; i++ {
		if err := bw.Add(sampleRecord(i)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path, err := Consolidate(testLogger(), out, "2022")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if want := filepath.Join(out, "2022.parquet"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	if _, err := os.Stat(filepath.Join(out, "2022")); !os.IsNotExist(err) {
		t.Errorf("batch dir should be removed, stat err = %v", err)
	}

	recs, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("consolidated file has %d records, want 5", len(recs))
	}
	for i, rec := range recs {
		want := fmt.Sprintf("entry-%d", i)
		if rec.EntryID == nil || *rec.EntryID != want {
			t.Errorf("record %d id = %v, want %q", i, rec.EntryID, want)
		}
	}
	rec := recs[0]
	if len(rec.ProjectLots) != 1 || rec.ProjectLots[0].Name == nil || *rec.ProjectLots[0].Name != "Lote uno" {
		t.Errorf("lots did not survive the round trip: %+v", rec.ProjectLots)
	}
	if len(rec.TenderResults) != 1 || rec.TenderResults[0].ResultLotID == nil || *rec.TenderResults[0].ResultLotID != "1" {
		t.Errorf("results did not survive the round trip: %+v", rec.TenderResults)
	}
}

func TestConsolidateNothingToDo(t *testing.T) {
	out := t.TempDir()
	path, err := Consolidate(testLogger(), out, "2022")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if _, err := os.Stat(filepath.Join(out, "2022.parquet")); !os.IsNotExist(err) {
		t.Errorf("no output file expected, stat err = %v", err)
	}
}
