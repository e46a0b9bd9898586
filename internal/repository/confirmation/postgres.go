package confirmation

import (
	"context"
	"errors"
	"fmt"

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

func (r *postgresRepo) Create(ctx context.Context, rec domain.ConfirmationRecord) (domain.ConfirmationRecord, error) {
	const q = `
INSERT INTO confirm_order (order_id, user_key, confirm_date, name, total_price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	err := pgtx.QueryRow(ctx, r.pool, q,
		rec.OrderID, rec.BuyerKey, rec.ConfirmedAt, rec.Name, rec.TotalAmount).Scan(&rec.ID)
	if err != nil {
		if pgtx.IsUniqueViolation(err) {
			return domain.ConfirmationRecord{}, domain.ErrInvalidTransition
		}
		return domain.ConfirmationRecord{}, fmt.Errorf("insert confirmation: %w", err)
	}

	const lineQ = `
INSERT INTO confirm_order_items (confirm_id, item_id, size, color, quantity, price)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, line := range rec.Lines {
		if _, err := pgtx.Exec(ctx, r.pool, lineQ,
			rec.ID, line.ItemID, line.Size, line.Color, line.Quantity, line.Price); err != nil {
			return domain.ConfirmationRecord{}, fmt.Errorf("insert confirmation line: %w", err)
		}
	}
	return rec, nil
}

func (r *postgresRepo) GetByOrderID(ctx context.Context, orderID int64) (*domain.ConfirmationRecord, error) {
	const q = `
SELECT id, order_id, user_key, confirm_date, name, total_price
FROM confirm_order
WHERE order_id = $1
`
	var rec domain.ConfirmationRecord
	err := pgtx.QueryRow(ctx, r.pool, q, orderID).Scan(
		&rec.ID, &rec.OrderID, &rec.BuyerKey, &rec.ConfirmedAt, &rec.Name, &rec.TotalAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get confirmation: %w", err)
	}
	if err := r.loadLines(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.ConfirmationRecord, error) {
	const q = `
SELECT id, order_id, user_key, confirm_date, name, total_price
FROM confirm_order
ORDER BY confirm_date DESC
`
	rows, err := pgtx.Query(ctx, r.pool, q)
	if err != nil {
		return nil, fmt.Errorf("list confirmations: %w", err)
	}
	defer rows.Close()

	var recs []domain.ConfirmationRecord
	for rows.Next() {
		var rec domain.ConfirmationRecord
		if err := rows.Scan(&rec.ID, &rec.OrderID, &rec.BuyerKey, &rec.ConfirmedAt, &rec.Name, &rec.TotalAmount); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recs {
		if err := r.loadLines(ctx, &recs[i]); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (r *postgresRepo) loadLines(ctx context.Context, rec *domain.ConfirmationRecord) error {
	const q = `
SELECT item_id, size, color, quantity, price
FROM confirm_order_items
WHERE confirm_id = $1
ORDER BY item_id
`
	rows, err := pgtx.Query(ctx, r.pool, q, rec.ID)
	if err != nil {
		return fmt.Errorf("load confirmation lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.ConfirmationLine
		if err := rows.Scan(&line.ItemID, &line.Size, &line.Color, &line.Quantity, &line.Price); err != nil {
			return err
		}
		rec.Lines = append(rec.Lines, line)
	}
	return rows.Err()
}
