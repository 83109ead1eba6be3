package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Change operations carried by ChangeMessage.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpImport = "import"
)

// ChangeMessage announces a persisted mutation of the budget. It carries no
// record data; consumers re-read the store.
type ChangeMessage struct {
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	ID        string    `json:"id,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a message stamped with the current time
func NewChangeMessage(kind, op, id string) *ChangeMessage {
	return &ChangeMessage{
		Kind:      kind,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message, rejecting ones without kind or op.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.Op == "" {
		return nil, errors.New("change message requires kind and op")
	}
	return &msg, nil
}
