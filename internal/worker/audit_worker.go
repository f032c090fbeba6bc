// Package worker consumes ledger events and appends them to the audit
// trail.
package worker

import (
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/csvio"
)

// AuditWorker writes one audit row per consumed ledger event. Rows are
// append-only; the trail is never rewritten.
type AuditWorker struct {
	audit *csvio.AuditLog
}

func NewAuditWorker(audit *csvio.AuditLog) *AuditWorker {
	return &AuditWorker{audit: audit}
}

// HandleEvent records a single event. A write failure is returned so
// the broker redelivers the event.
func (w *AuditWorker) HandleEvent(event *amqp.LedgerEvent) error {
	if err := w.audit.Append(event.Timestamp, event.Entity, event.Action, event.EntityID, event.Competency); err != nil {
		return fmt.Errorf("append audit row: %w", err)
	}
	slog.Debug("Audit row written",
		"entity", event.Entity,
		"action", event.Action,
		"entity_id", event.EntityID,
		"competency", event.Competency)
	return nil
}
