package schedule

import (
	"context"

	"tshirt-orders/internal/domain"
)

// Repository reads deadline entries. The rows are maintained by the site's
// schedule admin; this engine never writes them.
type Repository interface {
	GetByTitle(ctx context.Context, title string) (*domain.DeadlineEntry, error)
}
