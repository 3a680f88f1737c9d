package amqp

import (
	"encoding/json"
	"time"

	"gestion/internal/core"
)

// Document lifecycle events consumed by the rendering/notification side.
const (
	EventInvoicePaid  = "invoice.paid"
	EventQuoteExpired = "quote.expired"
)

// DocumentEventMessage is a lightweight notification; consumers fetch the
// full record from the store by id.
type DocumentEventMessage struct {
	Event     string       `json:"event"`
	DocType   core.DocType `json:"doc_type"`
	ID        int64        `json:"id"`
	Number    string       `json:"number"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewDocumentEventMessage(event string, docType core.DocType, id int64, number string) *DocumentEventMessage {
	return &DocumentEventMessage{
		Event:     event,
		DocType:   docType,
		ID:        id,
		Number:    number,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DocumentEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DocumentEventMessageFromJSON creates a message from JSON bytes
func DocumentEventMessageFromJSON(data []byte) (*DocumentEventMessage, error) {
	var msg DocumentEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
