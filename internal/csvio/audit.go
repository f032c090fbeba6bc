package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"
)

// AuditLog appends ledger events to a CSV file, one row per event.
// The file is created on first use; an existing file is appended to
// without rewriting the header.
type AuditLog struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

var auditHeader = []string{"timestamp", "entity", "action", "entityId", "competency"}

func OpenAuditLog(path string) (*AuditLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat audit log: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = ';'
	if info.Size() == 0 {
		if err := w.Write(auditHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write audit header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write audit header: %w", err)
		}
	}
	return &AuditLog{file: f, w: w}, nil
}

// Append writes one event row and flushes it to disk.
func (a *AuditLog) Append(ts time.Time, entity, action, entityID, competency string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	row := []string{ts.UTC().Format(time.RFC3339), entity, action, entityID, competency}
	if err := a.w.Write(row); err != nil {
		return fmt.Errorf("write audit row: %w", err)
	}
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		return fmt.Errorf("flush audit row: %w", err)
	}
	return nil
}

func (a *AuditLog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}
