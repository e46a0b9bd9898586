package redemption

import (
	"context"
	"time"

	"tshirt-orders/internal/clock"
	"tshirt-orders/internal/domain"
	"tshirt-orders/internal/events"
)

type orderRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ClaimRedemption(ctx context.Context, id int64, at time.Time) (bool, error)
}

// Service verifies pickup codes at the handout desk. A code passes exactly
// when it names a confirmed order and carries that order's buyer key; the
// redemption claim is a single conditional update, so each order hands out
// its shirts once no matter how many staff scan it at the same moment.
type Service struct {
	orders    orderRepo
	codec     Codec
	publisher events.Publisher
	clock     clock.Clock
}

func New(orders orderRepo, codec Codec, publisher events.Publisher, clk clock.Clock) *Service {
	return &Service{orders: orders, codec: codec, publisher: publisher, clock: clk}
}

// CodeFor returns the pickup code for a buyer's confirmed order.
func (s *Service) CodeFor(ctx context.Context, orderID int64, buyerKey string) (string, error) {
	ord, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if ord.BuyerKey != buyerKey {
		return "", domain.ErrBuyerMismatch
	}
	if ord.Status != domain.StatusConfirmed {
		return "", domain.ErrNotRedeemable
	}
	return s.codec.Encode(ord.ID, ord.BuyerKey), nil
}

// Verify decodes a scanned code and redeems the order it names.
func (s *Service) Verify(ctx context.Context, code string) (domain.Order, error) {
	orderID, buyerKey, err := s.codec.Decode(code)
	if err != nil {
		return domain.Order{}, err
	}

	ord, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if ord.BuyerKey != buyerKey {
		return domain.Order{}, domain.ErrBuyerMismatch
	}
	if ord.RedeemedAt != nil {
		return domain.Order{}, domain.ErrAlreadyRedeemed
	}
	if ord.Status != domain.StatusConfirmed {
		return domain.Order{}, domain.ErrNotRedeemable
	}

	now := s.clock.Now()
	claimed, err := s.orders.ClaimRedemption(ctx, orderID, now)
	if err != nil {
		return domain.Order{}, err
	}
	if !claimed {
		// Lost the race to a concurrent scan.
		return domain.Order{}, domain.ErrAlreadyRedeemed
	}

	ord.RedeemedAt = &now
	s.publisher.OrderRedeemed(ctx, *ord)
	return *ord, nil
}
