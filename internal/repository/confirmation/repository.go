package confirmation

import (
	"context"

	"tshirt-orders/internal/domain"
)

type Repository interface {
	// Create appends a ledger entry with its line copies. It is expected to
	// run inside the same transaction as the order status flip.
	Create(ctx context.Context, rec domain.ConfirmationRecord) (domain.ConfirmationRecord, error)
	GetByOrderID(ctx context.Context, orderID int64) (*domain.ConfirmationRecord, error)
	List(ctx context.Context) ([]domain.ConfirmationRecord, error)
}
