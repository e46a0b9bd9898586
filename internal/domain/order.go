package domain

import "time"

// Status is the payment-verification state of an order.
type Status string

const (
	StatusPendingPayment   Status = "pending_payment"
	StatusPaymentReviewing Status = "payment_reviewing"
	StatusPaid             Status = "paid"
	StatusConfirmed        Status = "confirmed"
	StatusCancelled        Status = "cancelled"
)

// CanTransitionTo reports whether the status graph allows moving to next.
// Confirmed and Cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPendingPayment:
		return next == StatusPaymentReviewing || next == StatusCancelled
	case StatusPaymentReviewing:
		return next == StatusPaid || next == StatusCancelled || next == StatusPendingPayment
	case StatusPaid:
		return next == StatusConfirmed
	default:
		return false
	}
}

// Cancellable reports whether a buyer may still cancel from this status.
func (s Status) Cancellable() bool {
	return s == StatusPendingPayment || s == StatusPaymentReviewing
}

// Pending reports whether the order still counts against the
// one-pending-order-per-buyer rule.
func (s Status) Pending() bool {
	return s == StatusPendingPayment || s == StatusPaymentReviewing
}

// Closed reports whether the order reached a terminal status and must not be
// mutated again.
func (s Status) Closed() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type Order struct {
	ID            int64       `json:"orderId"`
	BuyerKey      string      `json:"buyerKey"`
	DepositorName string      `json:"depositorName"`
	Status        Status      `json:"status"`
	TotalAmount   int64       `json:"totalAmount"`
	CreatedAt     time.Time   `json:"createdAt"`
	RedeemedAt    *time.Time  `json:"redeemedAt,omitempty"`
	Lines         []OrderLine `json:"lines,omitempty"`
}

// OrderLine is one (size,color) variant row of an order. ItemID is 1-based
// and unique within the order; the variant key (size,color) is too.
type OrderLine struct {
	ItemID   int    `json:"itemId"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

// TotalQuantity sums line quantities. The sum is fixed at order creation and
// conserved by every later edit.
func (o Order) TotalQuantity() int {
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}
