package schedule

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

func (r *postgresRepo) GetByTitle(ctx context.Context, title string) (*domain.DeadlineEntry, error) {
	const q = `SELECT title, day, end_time FROM schedules WHERE title = $1`
	var entry domain.DeadlineEntry
	err := pgtx.QueryRow(ctx, r.pool, q, title).Scan(&entry.Title, &entry.Day, &entry.EndTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get schedule %q: %w", title, err)
	}
	return &entry, nil
}
