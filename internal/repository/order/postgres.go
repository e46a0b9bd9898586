package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tshirt-orders/internal/domain"
	"tshirt-orders/internal/repository/pgtx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return pgtx.WithTx(ctx, r.pool, fn)
}

const orderColumns = `order_id, user_key, depositor_name, status, total_price, order_date, redeemed_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	const q = `
INSERT INTO orders (user_key, depositor_name, status, total_price, order_date)
VALUES ($1, $2, $3, $4, $5)
RETURNING order_id
`
	var id int64
	err := pgtx.QueryRow(ctx, r.pool, q, in.BuyerKey, in.DepositorName, string(in.Status), in.TotalAmount, in.CreatedAt).Scan(&id)
	if err != nil {
		if pgtx.IsUniqueViolation(err) {
			return domain.Order{}, domain.ErrDuplicatePendingOrder
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	lines := make([]domain.OrderLine, len(in.Lines))
	for i, line := range in.Lines {
		if line.ItemID == 0 {
			line.ItemID = i + 1
		}
		lines[i] = line
	}
	if err := r.insertLines(ctx, id, lines); err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:            id,
		BuyerKey:      in.BuyerKey,
		DepositorName: in.DepositorName,
		Status:        in.Status,
		TotalAmount:   in.TotalAmount,
		CreatedAt:     in.CreatedAt,
		Lines:         lines,
	}
	return order, nil
}

func (r *postgresRepo) HasPendingByBuyer(ctx context.Context, buyerKey string) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM orders
	WHERE user_key = $1 AND status IN ($2, $3)
)
`
	var exists bool
	err := pgtx.QueryRow(ctx, r.pool, q, buyerKey,
		string(domain.StatusPendingPayment), string(domain.StatusPaymentReviewing)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending orders: %w", err)
	}
	return exists, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	order, err := r.scanOrder(pgtx.QueryRow(ctx, r.pool, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadLines(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *postgresRepo) GetForUpdate(ctx context.Context, id int64) (domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1 FOR UPDATE`
	order, err := r.scanOrder(pgtx.QueryRow(ctx, r.pool, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order for update: %w", err)
	}
	if err := r.loadLines(ctx, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	const q = `UPDATE orders SET status = $2 WHERE order_id = $1`
	tag, err := pgtx.Exec(ctx, r.pool, q, id, string(status))
	if err != nil {
		if pgtx.IsUniqueViolation(err) {
			return domain.ErrDuplicatePendingOrder
		}
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepo) UpdateDepositorName(ctx context.Context, id int64, name string) error {
	const q = `UPDATE orders SET depositor_name = $2 WHERE order_id = $1`
	tag, err := pgtx.Exec(ctx, r.pool, q, id, name)
	if err != nil {
		return fmt.Errorf("update depositor name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ReplaceLines swaps the whole line set: delete-all then insert-all, so old
// and new lines never coexist. Callers run it inside WithTx.
func (r *postgresRepo) ReplaceLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error {
	if _, err := pgtx.Exec(ctx, r.pool, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	return r.insertLines(ctx, orderID, lines)
}

func (r *postgresRepo) insertLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error {
	const q = `
INSERT INTO order_items (order_id, item_id, size, color, quantity)
VALUES ($1, $2, $3, $4, $5)
`
	for i, line := range lines {
		itemID := line.ItemID
		if itemID == 0 {
			itemID = i + 1
		}
		if _, err := pgtx.Exec(ctx, r.pool, q, orderID, itemID, line.Size, line.Color, line.Quantity); err != nil {
			if pgtx.IsUniqueViolation(err) {
				return domain.ErrDuplicateVariant
			}
			return fmt.Errorf("insert line: %w", err)
		}
	}
	return nil
}

func (r *postgresRepo) ListByBuyer(ctx context.Context, buyerKey string) ([]domain.Order, error) {
	// Cancelled orders sort last, the rest newest first, matching the buyer
	// order history view.
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE user_key = $1
ORDER BY (status = 'cancelled'), order_id DESC
`
	return r.listOrders(ctx, q, buyerKey)
}

func (r *postgresRepo) Search(ctx context.Context, filter SearchFilter) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	n := 0
	if filter.Status != "" {
		n++
		q += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(filter.Status))
	}
	if filter.BuyerKey != "" {
		n++
		q += fmt.Sprintf(" AND user_key ILIKE $%d", n)
		args = append(args, "%"+filter.BuyerKey+"%")
	}
	if filter.DepositorName != "" {
		n++
		q += fmt.Sprintf(" AND depositor_name ILIKE $%d", n)
		args = append(args, "%"+filter.DepositorName+"%")
	}
	q += " ORDER BY order_date DESC"
	return r.listOrders(ctx, q, args...)
}

func (r *postgresRepo) ListStaleReviewing(ctx context.Context, cutoff time.Time) ([]int64, error) {
	const q = `
SELECT order_id FROM orders
WHERE status = $1 AND order_date <= $2
ORDER BY order_id
`
	rows, err := pgtx.Query(ctx, r.pool, q, string(domain.StatusPaymentReviewing), cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale reviewing: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepo) DemoteReviewing(ctx context.Context, id int64, cutoff time.Time) (bool, error) {
	// The status+age guard makes concurrent sweeps and racing admin updates
	// settle on a single winner per order.
	const q = `
UPDATE orders SET status = $2
WHERE order_id = $1 AND status = $3 AND order_date <= $4
`
	tag, err := pgtx.Exec(ctx, r.pool, q, id,
		string(domain.StatusPendingPayment), string(domain.StatusPaymentReviewing), cutoff)
	if err != nil {
		return false, fmt.Errorf("demote reviewing: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepo) ClaimRedemption(ctx context.Context, id int64, at time.Time) (bool, error) {
	const q = `
UPDATE orders SET redeemed_at = $2
WHERE order_id = $1 AND status = $3 AND redeemed_at IS NULL
`
	tag, err := pgtx.Exec(ctx, r.pool, q, id, at, string(domain.StatusConfirmed))
	if err != nil {
		return false, fmt.Errorf("claim redemption: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepo) StatusStats(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := pgtx.Query(ctx, r.pool, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("status stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[domain.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[domain.Status(status)] = count
	}
	return stats, rows.Err()
}

func (r *postgresRepo) VariantStats(ctx context.Context) ([]VariantCount, error) {
	const q = `
SELECT i.size, i.color, o.status, SUM(i.quantity)
FROM order_items i
JOIN orders o ON o.order_id = i.order_id
GROUP BY i.size, i.color, o.status
ORDER BY i.size, i.color, o.status
`
	rows, err := pgtx.Query(ctx, r.pool, q)
	if err != nil {
		return nil, fmt.Errorf("variant stats: %w", err)
	}
	defer rows.Close()

	var out []VariantCount
	for rows.Next() {
		var vc VariantCount
		var status string
		if err := rows.Scan(&vc.Size, &vc.Color, &status, &vc.Quantity); err != nil {
			return nil, err
		}
		vc.Status = domain.Status(status)
		out = append(out, vc)
	}
	return out, rows.Err()
}

func (r *postgresRepo) listOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := pgtx.Query(ctx, r.pool, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) loadLines(ctx context.Context, order *domain.Order) error {
	const q = `
SELECT item_id, size, color, quantity
FROM order_items
WHERE order_id = $1
ORDER BY item_id
`
	rows, err := pgtx.Query(ctx, r.pool, q, order.ID)
	if err != nil {
		return fmt.Errorf("load lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ItemID, &line.Size, &line.Color, &line.Quantity); err != nil {
			return err
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

func (r *postgresRepo) scanOrder(row pgx.Row) (domain.Order, error) {
	var order domain.Order
	var status string
	if err := row.Scan(&order.ID, &order.BuyerKey, &order.DepositorName, &status,
		&order.TotalAmount, &order.CreatedAt, &order.RedeemedAt); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.Status(status)
	return order, nil
}
