package events

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// Actions carried by a TransactionEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent announces a transaction mutation that went through the
// gateway. Consumers fetch the full record from the backend themselves;
// the event carries only what they need to decide whether to care.
type TransactionEvent struct {
	Action      string    `json:"action"`
	ID          int64     `json:"id"`
	Type        string    `json:"type,omitempty"`
	AmountCents int64     `json:"amountCents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionEvent builds an event for a mutation on tx.
func NewTransactionEvent(action string, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Action:      action,
		ID:          tx.ID,
		Type:        string(tx.Type),
		AmountCents: tx.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

// NewDeleteEvent builds an event for a deletion, where only the id is known.
func NewDeleteEvent(id int64) *TransactionEvent {
	return &TransactionEvent{
		Action:    ActionDeleted,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
