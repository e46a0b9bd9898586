package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type verifyRedemptionRequest struct {
	Code string `json:"code" binding:"required"`
}

// verifyRedemption is the handout-desk scan: decode the code and redeem the
// order it names, exactly once.
func (h *handlers) verifyRedemption(c *gin.Context) {
	var req verifyRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: "INVALID_BODY", Message: err.Error()}})
		return
	}
	ord, err := h.deps.Redemption.Verify(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": ord, "redeemedAt": ord.RedeemedAt})
}

// getRedemptionCode returns the code the buyer's QR is rendered from.
func (h *handlers) getRedemptionCode(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	code, err := h.deps.Redemption.CodeFor(c.Request.Context(), id, buyerKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}
