package worker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contas/internal/amqp"
	"contas/internal/csvio"
)

func TestAuditWorker_HandleEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	audit, err := csvio.OpenAuditLog(path)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer audit.Close()

	w := NewAuditWorker(audit)
	event := amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionCreated, "tx-1", "03/2025")
	if err := w.HandleEvent(event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	if !strings.Contains(string(data), "transaction;created;tx-1;03/2025") {
		t.Errorf("audit row missing: %s", data)
	}
}
