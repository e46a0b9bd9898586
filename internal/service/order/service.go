package order

import (
	"context"
	"log"
	"time"

	"tshirt-orders/internal/clock"
	"tshirt-orders/internal/domain"
	"tshirt-orders/internal/events"
	"tshirt-orders/internal/metrics"
	"tshirt-orders/internal/pricing"
	confirmationrepo "tshirt-orders/internal/repository/confirmation"
	orderrepo "tshirt-orders/internal/repository/order"
)

const defaultReviewTimeout = 24 * time.Hour

// DeadlineGate answers whether ordering is still open. Submit checks it once
// before touching storage.
type DeadlineGate interface {
	IsModificationOpen(ctx context.Context, now time.Time) bool
}

// Service drives an order through its lifecycle: pending_payment,
// payment_reviewing, paid, confirmed, with cancellation available until
// payment lands. Every mutation runs inside one transaction and re-reads the
// order with a row lock before deciding anything.
type Service struct {
	orders        orderrepo.Repository
	confirmations confirmationrepo.Repository
	gate          DeadlineGate
	publisher     events.Publisher
	clock         clock.Clock
	logger        *log.Logger
	reviewTimeout time.Duration
	metrics       *metrics.Metrics
}

type Option func(*Service)

// WithReviewTimeout overrides how long an order may sit in payment_reviewing
// before the sweep demotes it back to pending_payment.
func WithReviewTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reviewTimeout = d
		}
	}
}

// WithMetrics wires operation counters; without it the service runs unmetered.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(
	orders orderrepo.Repository,
	confirmations confirmationrepo.Repository,
	gate DeadlineGate,
	publisher events.Publisher,
	clk clock.Clock,
	logger *log.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		orders:        orders,
		confirmations: confirmations,
		gate:          gate,
		publisher:     publisher,
		clock:         clk,
		logger:        logger,
		reviewTimeout: defaultReviewTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput is a buyer's cart at checkout. ItemID on the lines is assigned
// by storage; any values supplied here are ignored.
type SubmitInput struct {
	BuyerKey      string
	DepositorName string
	Lines         []domain.OrderLine
}

// Submit places a new order in pending_payment. The total is priced here and
// never recomputed. A buyer with an order still awaiting payment cannot place
// a second one; the pending check and the insert share a transaction, and a
// partial unique index closes the remaining race.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (domain.Order, error) {
	created, err := s.submit(ctx, in)
	s.count("submit", err)
	return created, err
}

func (s *Service) submit(ctx context.Context, in SubmitInput) (domain.Order, error) {
	if in.BuyerKey == "" {
		return domain.Order{}, domain.ErrBuyerKeyRequired
	}
	if !s.gate.IsModificationOpen(ctx, s.clock.Now()) {
		return domain.Order{}, domain.ErrWindowClosed
	}
	if err := ValidateLines(in.Lines); err != nil {
		return domain.Order{}, err
	}

	var created domain.Order
	err := s.orders.WithTx(ctx, func(ctx context.Context) error {
		pending, err := s.orders.HasPendingByBuyer(ctx, in.BuyerKey)
		if err != nil {
			return err
		}
		if pending {
			return domain.ErrDuplicatePendingOrder
		}

		created, err = s.orders.Create(ctx, orderrepo.CreateOrderInput{
			BuyerKey:      in.BuyerKey,
			DepositorName: in.DepositorName,
			Status:        domain.StatusPendingPayment,
			TotalAmount:   pricing.Total(in.Lines),
			CreatedAt:     s.clock.Now(),
			Lines:         in.Lines,
		})
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.publisher.OrderCreated(ctx, created)
	return created, nil
}

// ValidateLines rejects empty carts, non-positive quantities and repeated
// (size,color) variants.
func ValidateLines(lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return domain.ErrEmptyCart
	}
	seen := make(map[[2]string]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		key := [2]string{line.Size, line.Color}
		if _, dup := seen[key]; dup {
			return domain.ErrDuplicateVariant
		}
		seen[key] = struct{}{}
	}
	return nil
}

// MarkReviewing records that the buyer reports having sent the deposit.
func (s *Service) MarkReviewing(ctx context.Context, id int64, buyerKey string) (domain.Order, error) {
	updated, previous, err := s.transition(ctx, id, buyerKey, domain.StatusPaymentReviewing)
	s.count("mark_reviewing", err)
	if err != nil {
		return domain.Order{}, err
	}
	s.publisher.StatusChanged(ctx, updated, previous)
	return updated, nil
}

// MarkPaid is the admin acknowledging the deposit on the bank side.
func (s *Service) MarkPaid(ctx context.Context, id int64) (domain.Order, error) {
	updated, previous, err := s.transition(ctx, id, "", domain.StatusPaid)
	s.count("mark_paid", err)
	if err != nil {
		return domain.Order{}, err
	}
	s.publisher.StatusChanged(ctx, updated, previous)
	return updated, nil
}

// Confirm finalizes a paid order: flips it to confirmed and writes the
// confirmation ledger entry with per-line price copies, all in one
// transaction. Double confirms lose on the ledger's order_id uniqueness.
func (s *Service) Confirm(ctx context.Context, id int64, buyerKey string) (domain.ConfirmationRecord, error) {
	rec, ord, err := s.confirm(ctx, id, buyerKey)
	s.count("confirm", err)
	if err != nil {
		return domain.ConfirmationRecord{}, err
	}
	s.publisher.StatusChanged(ctx, ord, domain.StatusPaid)
	return rec, nil
}

func (s *Service) confirm(ctx context.Context, id int64, buyerKey string) (domain.ConfirmationRecord, domain.Order, error) {
	var (
		rec domain.ConfirmationRecord
		ord domain.Order
	)
	err := s.orders.WithTx(ctx, func(ctx context.Context) error {
		var err error
		ord, err = s.orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ord.BuyerKey != buyerKey {
			return domain.ErrBuyerMismatch
		}
		if ord.Status != domain.StatusPaid {
			return domain.ErrInvalidTransition
		}
		if err := s.orders.UpdateStatus(ctx, id, domain.StatusConfirmed); err != nil {
			return err
		}
		ord.Status = domain.StatusConfirmed

		entry := domain.ConfirmationRecord{
			OrderID:     ord.ID,
			BuyerKey:    ord.BuyerKey,
			ConfirmedAt: s.clock.Now(),
			Name:        ord.DepositorName,
			TotalAmount: ord.TotalAmount,
		}
		for _, line := range ord.Lines {
			entry.Lines = append(entry.Lines, domain.ConfirmationLine{
				ItemID:   line.ItemID,
				Size:     line.Size,
				Color:    line.Color,
				Quantity: line.Quantity,
				Price:    pricing.UnitPrice(line.Size),
			})
		}
		rec, err = s.confirmations.Create(ctx, entry)
		return err
	})
	return rec, ord, err
}

// Cancel lets the buyer withdraw before payment is acknowledged. Paid and
// later orders stay.
func (s *Service) Cancel(ctx context.Context, id int64, buyerKey string) error {
	err := s.cancel(ctx, id, buyerKey)
	s.count("cancel", err)
	return err
}

func (s *Service) cancel(ctx context.Context, id int64, buyerKey string) error {
	var ord domain.Order
	err := s.orders.WithTx(ctx, func(ctx context.Context) error {
		var err error
		ord, err = s.orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ord.BuyerKey != buyerKey {
			return domain.ErrBuyerMismatch
		}
		if !ord.Status.Cancellable() {
			return domain.ErrNotCancellable
		}
		return s.orders.UpdateStatus(ctx, id, domain.StatusCancelled)
	})
	if err != nil {
		return err
	}

	previous := ord.Status
	ord.Status = domain.StatusCancelled
	s.publisher.StatusChanged(ctx, ord, previous)
	return nil
}

// UpdateDepositorName changes the name the buyer will wire money under. Only
// meaningful while payment is still open.
func (s *Service) UpdateDepositorName(ctx context.Context, id int64, buyerKey, name string) error {
	err := s.orders.WithTx(ctx, func(ctx context.Context) error {
		ord, err := s.orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ord.BuyerKey != buyerKey {
			return domain.ErrBuyerMismatch
		}
		if !ord.Status.Pending() {
			return domain.ErrOrderClosed
		}
		return s.orders.UpdateDepositorName(ctx, id, name)
	})
	s.count("update_depositor", err)
	return err
}

// SweepTimeouts demotes payment_reviewing orders older than the review
// timeout back to pending_payment, one guarded update per order. Re-running
// the sweep over the same set is a no-op.
func (s *Service) SweepTimeouts(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.reviewTimeout)
	ids, err := s.orders.ListStaleReviewing(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	demoted := 0
	for _, id := range ids {
		ok, err := s.orders.DemoteReviewing(ctx, id, cutoff)
		if err != nil {
			s.logger.Printf("sweep order %d: %v", id, err)
			continue
		}
		if !ok {
			continue
		}
		demoted++
		if s.metrics != nil {
			s.metrics.Swept.Inc()
		}
		if ord, err := s.orders.GetByID(ctx, id); err == nil {
			s.publisher.StatusChanged(ctx, *ord, domain.StatusPaymentReviewing)
		}
	}
	if demoted > 0 {
		s.logger.Printf("sweep demoted %d order(s) past review timeout", demoted)
	}
	return demoted, nil
}

// GetOrder returns one order scoped to its buyer. A wrong buyer key reads the
// same as a missing order.
func (s *Service) GetOrder(ctx context.Context, id int64, buyerKey string) (*domain.Order, error) {
	ord, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord.BuyerKey != buyerKey {
		return nil, domain.ErrBuyerMismatch
	}
	return ord, nil
}

// ListOrders returns the buyer's orders, live ones first.
func (s *Service) ListOrders(ctx context.Context, buyerKey string) ([]domain.Order, error) {
	if buyerKey == "" {
		return nil, domain.ErrBuyerKeyRequired
	}
	return s.orders.ListByBuyer(ctx, buyerKey)
}

// Receipt returns the confirmation ledger entry for a buyer's order, or nil
// when the order has not been confirmed.
func (s *Service) Receipt(ctx context.Context, id int64, buyerKey string) (*domain.ConfirmationRecord, error) {
	if _, err := s.GetOrder(ctx, id, buyerKey); err != nil {
		return nil, err
	}
	return s.confirmations.GetByOrderID(ctx, id)
}

// Search lists orders for the admin view.
func (s *Service) Search(ctx context.Context, filter orderrepo.SearchFilter) ([]domain.Order, error) {
	return s.orders.Search(ctx, filter)
}

// StatusStats counts orders per status.
func (s *Service) StatusStats(ctx context.Context) (map[domain.Status]int, error) {
	return s.orders.StatusStats(ctx)
}

// VariantStats aggregates ordered quantity per (size,color) and status.
func (s *Service) VariantStats(ctx context.Context) ([]orderrepo.VariantCount, error) {
	return s.orders.VariantStats(ctx)
}

// Confirmations lists the full confirmation ledger for the admin view.
func (s *Service) Confirmations(ctx context.Context) ([]domain.ConfirmationRecord, error) {
	return s.confirmations.List(ctx)
}

func (s *Service) transition(ctx context.Context, id int64, buyerKey string, next domain.Status) (domain.Order, domain.Status, error) {
	var (
		ord      domain.Order
		previous domain.Status
	)
	err := s.orders.WithTx(ctx, func(ctx context.Context) error {
		var err error
		ord, err = s.orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if buyerKey != "" && ord.BuyerKey != buyerKey {
			return domain.ErrBuyerMismatch
		}
		if !ord.Status.CanTransitionTo(next) {
			return domain.ErrInvalidTransition
		}
		if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		previous = ord.Status
		ord.Status = next
		return nil
	})
	return ord, previous, err
}

func (s *Service) count(op string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.Orders.WithLabelValues(op, outcome).Inc()
}
