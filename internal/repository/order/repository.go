package order

import (
	"context"
	"time"

	"tshirt-orders/internal/domain"
)

// CreateOrderInput carries the fields persisted at submit time. Status and
// total are decided by the service; CreatedAt comes from the injected clock.
type CreateOrderInput struct {
	BuyerKey      string
	DepositorName string
	Status        domain.Status
	TotalAmount   int64
	CreatedAt     time.Time
	Lines         []domain.OrderLine
}

// SearchFilter narrows admin order listings. Zero values match everything.
type SearchFilter struct {
	Status        domain.Status
	BuyerKey      string
	DepositorName string
}

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, in CreateOrderInput) (domain.Order, error)
	HasPendingByBuyer(ctx context.Context, buyerKey string) (bool, error)

	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// GetForUpdate locks the order row for the remainder of the transaction.
	GetForUpdate(ctx context.Context, id int64) (domain.Order, error)

	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	UpdateDepositorName(ctx context.Context, id int64, name string) error
	ReplaceLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error

	ListByBuyer(ctx context.Context, buyerKey string) ([]domain.Order, error)
	Search(ctx context.Context, filter SearchFilter) ([]domain.Order, error)

	// ListStaleReviewing returns ids of payment_reviewing orders created at or
	// before cutoff. DemoteReviewing moves one such order back to
	// pending_payment; it reports false when a concurrent writer got there
	// first, making the sweep idempotent.
	ListStaleReviewing(ctx context.Context, cutoff time.Time) ([]int64, error)
	DemoteReviewing(ctx context.Context, id int64, cutoff time.Time) (bool, error)

	// ClaimRedemption stamps redeemed_at exactly once for a confirmed order.
	ClaimRedemption(ctx context.Context, id int64, at time.Time) (bool, error)

	StatusStats(ctx context.Context) (map[domain.Status]int, error)
	VariantStats(ctx context.Context) ([]VariantCount, error)
}

// VariantCount aggregates ordered quantity per (size,color) and status, the
// data behind the admin handout dashboard.
type VariantCount struct {
	Size     string        `json:"size"`
	Color    string        `json:"color"`
	Status   domain.Status `json:"status"`
	Quantity int           `json:"quantity"`
}
