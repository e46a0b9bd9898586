package domain

import "time"

// ConfirmationRecord is the append-only ledger entry written when a buyer
// finalizes a paid order. It owns a copy of the line items as they were at
// confirmation time and is the source of truth for physical handout.
type ConfirmationRecord struct {
	ID          int64              `json:"id"`
	OrderID     int64              `json:"orderId"`
	BuyerKey    string             `json:"buyerKey"`
	ConfirmedAt time.Time          `json:"confirmedAt"`
	Name        string             `json:"name"`
	TotalAmount int64              `json:"totalAmount"`
	Lines       []ConfirmationLine `json:"lines,omitempty"`
}

type ConfirmationLine struct {
	ItemID   int    `json:"itemId"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}
