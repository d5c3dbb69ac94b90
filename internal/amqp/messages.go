package amqp

import (
	"encoding/json"
	"time"
)

// Payment event kinds carried on the export queue.
const (
	EventPaymentRecorded  = "payment.recorded"
	EventPaymentCancelled = "payment.cancelled"
)

// PaymentEventMessage is the lightweight notification published when a
// bill payment is recorded or cancelled. It carries only identifiers;
// the worker fetches the full ledger record from the database.
type PaymentEventMessage struct {
	Kind          string    `json:"kind"`
	TransactionID int64     `json:"transaction_id"`
	OwnerID       int64     `json:"owner_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewPaymentEventMessage(kind string, transactionID, ownerID int64) *PaymentEventMessage {
	return &PaymentEventMessage{
		Kind:          kind,
		TransactionID: transactionID,
		OwnerID:       ownerID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PaymentEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentEventMessageFromJSON creates a message from JSON bytes
func PaymentEventMessageFromJSON(data []byte) (*PaymentEventMessage, error) {
	var msg PaymentEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
