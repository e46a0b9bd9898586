package pricing

import (
	"testing"

	"tshirt-orders/internal/domain"
)

func TestUnitPrice(t *testing.T) {
	if got := UnitPrice("M"); got != 10000 {
		t.Fatalf("expected 10000 for M, got %d", got)
	}
	if got := UnitPrice("3XL"); got != 11000 {
		t.Fatalf("expected 11000 for 3XL, got %d", got)
	}
}

func TestTotalSingleShirtNoDiscount(t *testing.T) {
	total := Total([]domain.OrderLine{{Size: "M", Color: "Black", Quantity: 1}})
	if total != 10000 {
		t.Fatalf("expected 10000, got %d", total)
	}
}

func TestTotalBulkDiscountApplies(t *testing.T) {
	lines := []domain.OrderLine{
		{Size: "M", Color: "Black", Quantity: 2},
		{Size: "L", Color: "White", Quantity: 1},
	}
	// 3 * 10000 - 3 * 1000
	if total := Total(lines); total != 27000 {
		t.Fatalf("expected 27000, got %d", total)
	}
}

func TestTotalLargeSizeTier(t *testing.T) {
	lines := []domain.OrderLine{
		{Size: "3XL", Color: "Black", Quantity: 1},
		{Size: "M", Color: "Black", Quantity: 1},
	}
	// 11000 + 10000 - 2 * 1000
	if total := Total(lines); total != 19000 {
		t.Fatalf("expected 19000, got %d", total)
	}
}
