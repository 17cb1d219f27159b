package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/session"
)

func fakeEntries(n int) []ledger.Entry {
	faker := gofakeit.New(42)
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	entries := make([]ledger.Entry, 0, n)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i)
		e := ledger.Entry{
			ID:        faker.UUID(),
			Date:      date.Format(ledger.DateLayout),
			Week:      i/7 + 1,
			Day:       i%7 + 1,
			Type:      ledger.Types[i%len(ledger.Types)],
			Activity:  faker.Word(),
			Notes:     faker.Sentence(6),
			Completed: faker.Bool(),
			CreatedAt: date.Add(time.Duration(faker.IntRange(6, 20)) * time.Hour),
		}
		e.Measures.Duration = ledger.Float(faker.Float64Range(10, 90))
		if i%2 == 0 {
			e.Measures.Distance = ledger.Float(faker.Float64Range(1, 8))
			e.Measures.Mood = ledger.Int(faker.IntRange(1, 10))
		}
		entries = append(entries, e)
	}
	return entries
}

func sampleRecords() []session.Record {
	start := time.Date(2026, 10, 1, 6, 0, 0, 0, time.UTC)
	return []session.Record{
		{
			ID:             "r1",
			TemplateID:     "strength-foundation",
			Name:           "Strength Foundation",
			Status:         session.StatusCompleted,
			StartedAt:      start,
			EndedAt:        start.Add(25 * time.Minute),
			ElapsedSeconds: 1500,
			TotalExercises: 4,
			CompletedCount: 11,
		},
		{
			ID:             "r2",
			TemplateID:     "run-intervals",
			Name:           "Run Intervals",
			Status:         session.StatusStopped,
			StartedAt:      start.Add(24 * time.Hour),
			EndedAt:        start.Add(24*time.Hour + 61*time.Second),
			ElapsedSeconds: 61,
			TotalExercises: 3,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestLedgerToCSV(t *testing.T) {
	entries := fakeEntries(10)
	path := filepath.Join(t.TempDir(), "ledger.csv")

	if err := LedgerToCSV(entries, path); err != nil {
		t.Fatalf("LedgerToCSV: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 11 {
		t.Fatalf("expected 11 rows (1 header + 10 data), got %d", len(rows))
	}
	for i, h := range ledgerHeader {
		if rows[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}

	first := rows[1]
	if first[0] != entries[0].ID {
		t.Fatalf("ID = %q, want %q", first[0], entries[0].ID)
	}
	if first[1] != "2026-09-01" {
		t.Fatalf("Date = %q", first[1])
	}
	if first[4] != "workout" {
		t.Fatalf("Type = %q, want workout", first[4])
	}
	if first[8] == "" {
		t.Fatal("distance should be set on even rows")
	}
	if rows[2][8] != "" {
		t.Fatalf("missing distance should be an empty cell, got %q", rows[2][8])
	}
	if first[len(first)-1] != entries[0].Notes {
		t.Fatalf("Notes = %q", first[len(first)-1])
	}
}

func TestLedgerToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := LedgerToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	if rows := readCSV(t, path); len(rows) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(rows))
	}
}

func TestLedgerToCSVSpecialCharacters(t *testing.T) {
	entries := []ledger.Entry{{
		ID:       "1",
		Date:     "2026-10-17",
		Week:     3,
		Day:      1,
		Type:     ledger.TypeMental,
		Activity: `"Box" breathing`,
		Notes:    `notes with "quotes" and, commas`,
	}}
	path := filepath.Join(t.TempDir(), "special.csv")
	if err := LedgerToCSV(entries, path); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if rows[1][5] != `"Box" breathing` {
		t.Fatalf("activity mangled: %q", rows[1][5])
	}
	if rows[1][len(rows[1])-1] != `notes with "quotes" and, commas` {
		t.Fatalf("notes mangled: %q", rows[1][len(rows[1])-1])
	}
}

func TestHistoryToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := HistoryToCSV(sampleRecords(), path); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][6] != "1500" || rows[1][7] != "00:25:00" {
		t.Fatalf("elapsed = %q / %q", rows[1][6], rows[1][7])
	}
	if rows[2][3] != "stopped" {
		t.Fatalf("status = %q, want stopped", rows[2][3])
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := LedgerToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
	if err := HistoryToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestLedgerToJSON(t *testing.T) {
	entries := fakeEntries(5)
	path := filepath.Join(t.TempDir(), "ledger.json")

	if err := LedgerToJSON(entries, path); err != nil {
		t.Fatalf("LedgerToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result ledgerExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 5 || len(result.Entries) != 5 {
		t.Fatalf("count = %d, entries = %d, want 5", result.Count, len(result.Entries))
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	got := result.Entries[0]
	if got.ID != entries[0].ID || *got.Measures.Duration != *entries[0].Measures.Duration {
		t.Fatalf("first entry mismatch: %+v", got)
	}
	if result.Entries[1].Measures.Distance != nil {
		t.Fatal("unset measures should stay unset")
	}
	if strings.Contains(string(data), `"fat":`) {
		t.Fatal("unset measures should be omitted from the file")
	}
}

func TestHistoryToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := HistoryToJSON(sampleRecords(), path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result historyExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("count = %d, want 2", result.Count)
	}
	if result.Sessions[1].Elapsed != "00:01:01" {
		t.Fatalf("elapsed = %q", result.Sessions[1].Elapsed)
	}
	if result.Sessions[0].TemplateID != "strength-foundation" {
		t.Fatalf("template = %q", result.Sessions[0].TemplateID)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be pretty-printed")
	}
}

func TestHistoryToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := HistoryToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result historyExport
	json.Unmarshal(data, &result)
	if result.Count != 0 || result.Sessions != nil {
		t.Fatalf("expected an empty export, got %+v", result)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := LedgerToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Write / ParseFormat
// ============================================================

func TestWriteBothFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	now := time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC)

	for _, format := range []Format{FormatCSV, FormatJSON} {
		paths, err := Write(dir, format, fakeEntries(3), sampleRecords(), now)
		if err != nil {
			t.Fatalf("Write(%s): %v", format, err)
		}
		if len(paths) != 2 {
			t.Fatalf("expected 2 paths, got %d", len(paths))
		}
		want := "trainr-ledger-20261017-150405." + string(format)
		if filepath.Base(paths[0]) != want {
			t.Fatalf("ledger file = %q, want %q", filepath.Base(paths[0]), want)
		}
		for _, p := range paths {
			if _, err := os.Stat(p); err != nil {
				t.Fatalf("missing export file %s: %v", p, err)
			}
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{" JSON ", FormatJSON, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
