package amqp

import (
	"testing"

	"gestion/internal/core"
)

func TestDocumentEventMessageRoundTrip(t *testing.T) {
	msg := NewDocumentEventMessage(EventInvoicePaid, core.DocInvoice, 42, "FACT-2024-042")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := DocumentEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("DocumentEventMessageFromJSON: %v", err)
	}
	if got.Event != EventInvoicePaid || got.DocType != core.DocInvoice || got.ID != 42 || got.Number != "FACT-2024-042" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestDocumentEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := DocumentEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("malformed payload accepted")
	}
}
