package amqp

import (
	"testing"
	"time"
)

func TestNewLedgerEvent(t *testing.T) {
	e := NewLedgerEvent(EntityTransaction, ActionCreated, "tx-1", "03/2025")

	if e.Entity != EntityTransaction {
		t.Errorf("Entity = %v, want %v", e.Entity, EntityTransaction)
	}
	if e.Action != ActionCreated {
		t.Errorf("Action = %v, want %v", e.Action, ActionCreated)
	}
	if e.EntityID != "tx-1" || e.Competency != "03/2025" {
		t.Errorf("unexpected ids: %+v", e)
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(e.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestLedgerEvent_JSON(t *testing.T) {
	timestamp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	e := &LedgerEvent{
		Entity:     EntityMonth,
		Action:     ActionClosed,
		Competency: "01/2025",
		Timestamp:  timestamp,
	}

	jsonBytes, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerEventFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON() error = %v", err)
	}

	if parsed.Entity != e.Entity || parsed.Action != e.Action || parsed.Competency != e.Competency {
		t.Errorf("parsed = %+v, want %+v", parsed, e)
	}
	if !parsed.Timestamp.Equal(e.Timestamp) {
		t.Errorf("parsed Timestamp = %v, want %v", parsed.Timestamp, e.Timestamp)
	}
}

func TestLedgerEvent_InvalidJSON(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte(`{"entity": 42`)); err == nil {
		t.Error("LedgerEventFromJSON() should fail with invalid JSON")
	}
}
