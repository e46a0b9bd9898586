package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tshirt-orders/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorCodes = map[error]struct {
	status int
	code   string
}{
	domain.ErrEmptyCart:        {http.StatusBadRequest, "EMPTY_CART"},
	domain.ErrInvalidQuantity:  {http.StatusBadRequest, "INVALID_QUANTITY"},
	domain.ErrDuplicateVariant: {http.StatusBadRequest, "DUPLICATE_VARIANT"},
	domain.ErrQuantityMismatch: {http.StatusBadRequest, "QUANTITY_MISMATCH"},
	domain.ErrMalformedCode:    {http.StatusBadRequest, "MALFORMED_CODE"},
	domain.ErrBuyerKeyRequired: {http.StatusBadRequest, "BUYER_KEY_REQUIRED"},

	domain.ErrInvalidTransition:     {http.StatusConflict, "INVALID_TRANSITION"},
	domain.ErrDuplicatePendingOrder: {http.StatusConflict, "DUPLICATE_PENDING_ORDER"},
	domain.ErrWindowClosed:          {http.StatusConflict, "WINDOW_CLOSED"},
	domain.ErrNotCancellable:        {http.StatusConflict, "NOT_CANCELLABLE"},
	domain.ErrOrderClosed:           {http.StatusConflict, "ORDER_CLOSED"},
	domain.ErrNotRedeemable:         {http.StatusConflict, "NOT_REDEEMABLE"},
	domain.ErrAlreadyRedeemed:       {http.StatusConflict, "ALREADY_REDEEMED"},

	// A wrong buyer key answers exactly like a missing order.
	domain.ErrOrderNotFound:    {http.StatusNotFound, "ORDER_NOT_FOUND"},
	domain.ErrBuyerMismatch:    {http.StatusNotFound, "ORDER_NOT_FOUND"},
	domain.ErrScheduleNotFound: {http.StatusNotFound, "SCHEDULE_NOT_FOUND"},
}

// respondError maps domain errors to HTTP statuses and stable error codes.
// Anything unmapped is an internal error and keeps its detail out of the
// response.
func respondError(c *gin.Context, err error) {
	for domainErr, mapping := range errorCodes {
		if errors.Is(err, domainErr) {
			c.JSON(mapping.status, gin.H{"error": errorBody{Code: mapping.code, Message: domainErr.Error()}})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": errorBody{Code: "INTERNAL", Message: "internal error"}})
}
