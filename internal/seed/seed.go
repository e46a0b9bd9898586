package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tshirt-orders/internal/domain"
)

type scheduleSeed struct {
	Title   string
	Day     string
	EndTime string
}

// Apply inserts the schedule rows the deadline gates read. It is idempotent
// via ON CONFLICT, so re-running it only refreshes the dates.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	schedules := []scheduleSeed{
		{
			Title:   domain.ScheduleOrderDeadline,
			Day:     "order deadline",
			EndTime: "20260301",
		},
		{
			Title:   domain.SchedulePickupWindow,
			Day:     "pickup day",
			EndTime: "20260310",
		},
	}

	for _, s := range schedules {
		if err := upsertSchedule(ctx, pool, s); err != nil {
			return fmt.Errorf("upsert schedule %s: %w", s.Title, err)
		}
	}

	return nil
}

func upsertSchedule(ctx context.Context, pool *pgxpool.Pool, s scheduleSeed) error {
	const q = `
INSERT INTO schedules (title, day, end_time)
VALUES ($1, $2, $3)
ON CONFLICT (title) DO UPDATE
SET day = EXCLUDED.day,
    end_time = EXCLUDED.end_time
`
	_, err := pool.Exec(ctx, q, s.Title, s.Day, s.EndTime)
	return err
}
