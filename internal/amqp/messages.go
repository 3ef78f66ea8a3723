package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage is a lightweight message for syncing a transaction
// to the hosted store. It carries only the ID and a deletion flag; the worker
// fetches the full transaction from the local database.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Deleted   bool      `json:"deleted"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates a sync message for an upsert.
func NewTransactionSyncMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewTransactionDeleteMessage creates a sync message for a deletion.
func NewTransactionDeleteMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Deleted:   true,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
