// Package export writes the ledger and session history to CSV or JSON files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/session"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// Write exports entries and records into dir as two timestamped files and returns their paths.
func Write(dir string, format Format, entries []ledger.Entry, records []session.Record, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	stamp := now.Format("20060102-150405")
	ledgerPath := filepath.Join(dir, fmt.Sprintf("trainr-ledger-%s.%s", stamp, format))
	historyPath := filepath.Join(dir, fmt.Sprintf("trainr-history-%s.%s", stamp, format))

	var err error
	switch format {
	case FormatCSV:
		if err = LedgerToCSV(entries, ledgerPath); err == nil {
			err = HistoryToCSV(records, historyPath)
		}
	case FormatJSON:
		if err = LedgerToJSON(entries, ledgerPath); err == nil {
			err = HistoryToJSON(records, historyPath)
		}
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return []string{ledgerPath, historyPath}, nil
}
