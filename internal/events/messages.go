package events

import (
	"encoding/json"
	"time"
)

// Routing keys on the topic exchange.
const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
	CategoryCreated    = "category.created"
	CategoryDeleted    = "category.deleted"
)

// Event is a lightweight change notification. Consumers fetch the full row
// by ID when they need it.
type Event struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Removed   int64     `json:"removed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(typ string, id int64, name string) Event {
	return Event{
		Type:      typ,
		ID:        id,
		Name:      name,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
