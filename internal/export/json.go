package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/session"
)

type ledgerExport struct {
	ExportedAt string         `json:"exported_at"`
	Count      int            `json:"count"`
	Entries    []ledger.Entry `json:"entries"`
}

type historyExport struct {
	ExportedAt string         `json:"exported_at"`
	Count      int            `json:"count"`
	Sessions   []historyEntry `json:"sessions"`
}

type historyEntry struct {
	session.Record
	Elapsed string `json:"elapsed"`
}

func LedgerToJSON(entries []ledger.Entry, path string) error {
	return writeJSON(path, ledgerExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
		Entries:    entries,
	})
}

func HistoryToJSON(records []session.Record, path string) error {
	export := historyExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
	}
	for _, r := range records {
		export.Sessions = append(export.Sessions, historyEntry{
			Record:  r,
			Elapsed: formatDuration(int64(r.ElapsedSeconds)),
		})
	}
	return writeJSON(path, export)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
