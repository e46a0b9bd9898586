package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tshirt-orders/internal/domain"
)

func TestEventEnvelopeCarriesOrder(t *testing.T) {
	order := domain.Order{
		ID:          42,
		BuyerKey:    "buyer-1",
		Status:      domain.StatusPaymentReviewing,
		TotalAmount: 27000,
		CreatedAt:   time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC),
		Lines: []domain.OrderLine{
			{ItemID: 1, Size: "M", Color: "Black", Quantity: 2},
			{ItemID: 2, Size: "L", Color: "White", Quantity: 1},
		},
	}

	pub := &MockPublisher{}
	pub.StatusChanged(context.Background(), order, domain.StatusPendingPayment)

	if len(pub.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.Events))
	}
	ev := pub.Events[0]
	if ev.Type != EventTypeOrderStatusChanged {
		t.Fatalf("type = %s", ev.Type)
	}
	if ev.ID == "" {
		t.Fatalf("expected a generated event id")
	}
	if ev.OrderID != 42 || ev.BuyerKey != "buyer-1" {
		t.Fatalf("envelope = %+v", ev)
	}
	if ev.PreviousStatus != domain.StatusPendingPayment || ev.NewStatus != domain.StatusPaymentReviewing {
		t.Fatalf("statuses = %s -> %s", ev.PreviousStatus, ev.NewStatus)
	}
	if len(ev.Order.Lines) != 2 || ev.Order.TotalAmount != 27000 {
		t.Fatalf("order payload = %+v", ev.Order)
	}

	// The envelope must serialize whole; this is the payload put on the wire.
	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	var decoded OrderEvent
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if decoded.Order.ID != 42 || len(decoded.Order.Lines) != 2 {
		t.Fatalf("decoded order = %+v", decoded.Order)
	}
}
