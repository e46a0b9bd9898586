// Package pricing computes order totals for the shirt sale. Prices are
// integer KRW: one flat unit price with a surcharge for the largest size
// tier, and a per-shirt discount once the order reaches two shirts.
package pricing

import "tshirt-orders/internal/domain"

const (
	unitPrice     int64 = 10000
	xxxlPrice     int64 = 11000
	bulkDiscount  int64 = 1000
	bulkThreshold       = 2
)

// UnitPrice returns the per-shirt price for a size.
func UnitPrice(size string) int64 {
	if size == "3XL" {
		return xxxlPrice
	}
	return unitPrice
}

// Total computes the amount due for a set of lines: sum of unit prices minus
// the bulk discount (per shirt, once total quantity reaches the threshold).
// Computed once at order creation and immutable thereafter.
func Total(lines []domain.OrderLine) int64 {
	var total int64
	qty := 0
	for _, line := range lines {
		total += UnitPrice(line.Size) * int64(line.Quantity)
		qty += line.Quantity
	}
	if qty >= bulkThreshold {
		total -= bulkDiscount * int64(qty)
	}
	return total
}
