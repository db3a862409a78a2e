package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EventKind names the ledger change and doubles as the routing key.
type EventKind string

const (
	TransactionSaved   EventKind = "transaction.saved"
	TransactionDeleted EventKind = "transaction.deleted"
	PaymentRecorded    EventKind = "payment.recorded"
	PaymentUpdated     EventKind = "payment.updated"
	PaymentDeleted     EventKind = "payment.deleted"
)

// LedgerEvent announces a change to the ledger. It carries only the entity id;
// consumers load the current state from the database.
type LedgerEvent struct {
	Kind      EventKind `json:"kind"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrMalformedEvent is returned for messages that can never be handled.
var ErrMalformedEvent = errors.New("malformed ledger event")

// NewLedgerEvent stamps an event with the current UTC time.
func NewLedgerEvent(kind EventKind, entityID string) LedgerEvent {
	return LedgerEvent{
		Kind:      kind,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON encodes the event as the message body.
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event, rejecting payloads without kind or id.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return LedgerEvent{}, err
	}
	if e.Kind == "" || e.EntityID == "" {
		return LedgerEvent{}, ErrMalformedEvent
	}
	return e, nil
}
