package amqp

import (
	"encoding/json"
	"time"
)

// Entities appearing in ledger events.
const (
	EntityTransaction = "transaction"
	EntityMonth       = "month"
	EntityDeposit     = "deposit"
)

// Actions appearing in ledger events.
const (
	ActionCreated  = "created"
	ActionDeleted  = "deleted"
	ActionClosed   = "closed"
	ActionReopened = "reopened"
	ActionAdded    = "added"
)

// LedgerEvent is a lightweight change notification. It carries ids,
// not entity payloads; consumers that need details read the store.
type LedgerEvent struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entityId,omitempty"`
	Competency string    `json:"competency,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewLedgerEvent(entity, action, entityID, competency string) *LedgerEvent {
	return &LedgerEvent{
		Entity:     entity,
		Action:     action,
		EntityID:   entityID,
		Competency: competency,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
