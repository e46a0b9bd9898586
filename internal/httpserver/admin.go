package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tshirt-orders/internal/domain"
	orderrepo "tshirt-orders/internal/repository/order"
)

func (h *handlers) searchOrders(c *gin.Context) {
	filter := orderrepo.SearchFilter{
		Status:        domain.Status(c.Query("status")),
		BuyerKey:      c.Query("buyerKey"),
		DepositorName: c.Query("depositorName"),
	}
	orders, err := h.deps.Orders.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// adminMarkReviewing moves a pending order to payment_reviewing on behalf of
// the buyer, used when the deposit report arrives out of band.
func (h *handlers) adminMarkReviewing(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	ord, err := h.deps.Orders.MarkReviewing(c.Request.Context(), id, "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

func (h *handlers) adminMarkPaid(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	ord, err := h.deps.Orders.MarkPaid(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

func (h *handlers) listConfirmations(c *gin.Context) {
	records, err := h.deps.Orders.Confirmations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmations": records})
}

func (h *handlers) statusStats(c *gin.Context) {
	stats, err := h.deps.Orders.StatusStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": stats})
}

func (h *handlers) variantStats(c *gin.Context) {
	stats, err := h.deps.Orders.VariantStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": stats})
}
