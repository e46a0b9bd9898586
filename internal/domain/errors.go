package domain

import "errors"

// Validation errors: malformed input, never retried.
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrDuplicateVariant = errors.New("duplicate size/color variant")
	ErrQuantityMismatch = errors.New("total quantity must match the original order")
	ErrMalformedCode    = errors.New("malformed redemption code")
	ErrBuyerKeyRequired = errors.New("buyer key required")
)

// State-conflict errors: the operation is valid but the order is in the
// wrong state; the caller may re-fetch and retry at the user's discretion.
var (
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrDuplicatePendingOrder = errors.New("buyer already has a pending order")
	ErrWindowClosed          = errors.New("deadline has passed")
	ErrNotCancellable        = errors.New("order can no longer be cancelled")
	ErrOrderClosed           = errors.New("order is closed and cannot be edited")
	ErrNotRedeemable         = errors.New("order is not redeemable")
	ErrAlreadyRedeemed       = errors.New("order was already redeemed")
)

// Not-found errors. Buyer mismatch is reported to clients exactly like a
// missing order so the response does not leak which part failed.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrBuyerMismatch    = errors.New("order does not belong to buyer")
	ErrScheduleNotFound = errors.New("schedule entry not found")
)
