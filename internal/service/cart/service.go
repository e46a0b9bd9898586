package cart

import (
	"context"
	"time"

	"tshirt-orders/internal/clock"
	"tshirt-orders/internal/domain"
	ordersvc "tshirt-orders/internal/service/order"
)

// DeadlineGate mirrors the ordering gate: edits close together with new
// orders.
type DeadlineGate interface {
	IsModificationOpen(ctx context.Context, now time.Time) bool
}

type orderRepo interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetForUpdate(ctx context.Context, id int64) (domain.Order, error)
	ReplaceLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error
}

// Service applies line edits to an existing order. An edit replaces the full
// line set in one transaction and must conserve the order's total quantity,
// because the amount due was priced at submit time and never changes.
type Service struct {
	orders orderRepo
	gate   DeadlineGate
	clock  clock.Clock
}

func New(orders orderRepo, gate DeadlineGate, clk clock.Clock) *Service {
	return &Service{orders: orders, gate: gate, clock: clk}
}

// ApplyEdit swaps the order's lines for the given set. The order must belong
// to the buyer, must not be closed, and the new lines must sum to the same
// quantity as the old ones.
func (s *Service) ApplyEdit(ctx context.Context, orderID int64, buyerKey string, lines []domain.OrderLine) (domain.Order, error) {
	if !s.gate.IsModificationOpen(ctx, s.clock.Now()) {
		return domain.Order{}, domain.ErrWindowClosed
	}
	if err := ordersvc.ValidateLines(lines); err != nil {
		return domain.Order{}, err
	}

	var updated domain.Order
	err := s.orders.WithTx(ctx, func(ctx context.Context) error {
		ord, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord.BuyerKey != buyerKey {
			return domain.ErrBuyerMismatch
		}
		if ord.Status.Closed() {
			return domain.ErrOrderClosed
		}

		edited := ord
		edited.Lines = lines
		if edited.TotalQuantity() != ord.TotalQuantity() {
			return domain.ErrQuantityMismatch
		}

		if err := s.orders.ReplaceLines(ctx, orderID, lines); err != nil {
			return err
		}
		updated = edited
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}
