package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tshirt-orders/internal/domain"
	ordersvc "tshirt-orders/internal/service/order"
)

type orderLineRequest struct {
	Size     string `json:"size" binding:"required"`
	Color    string `json:"color" binding:"required"`
	Quantity int    `json:"quantity"`
}

type submitOrderRequest struct {
	DepositorName string             `json:"depositorName"`
	Lines         []orderLineRequest `json:"lines"`
}

func toDomainLines(lines []orderLineRequest) []domain.OrderLine {
	out := make([]domain.OrderLine, len(lines))
	for i, line := range lines {
		out[i] = domain.OrderLine{Size: line.Size, Color: line.Color, Quantity: line.Quantity}
	}
	return out
}

func (h *handlers) submitOrder(c *gin.Context) {
	var req submitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: "INVALID_BODY", Message: err.Error()}})
		return
	}

	ord, err := h.deps.Orders.Submit(c.Request.Context(), ordersvc.SubmitInput{
		BuyerKey:      buyerKey(c),
		DepositorName: req.DepositorName,
		Lines:         toDomainLines(req.Lines),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ord)
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListOrders(c.Request.Context(), buyerKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) getOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	ord, err := h.deps.Orders.GetOrder(c.Request.Context(), id, buyerKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

type editItemsRequest struct {
	Lines []orderLineRequest `json:"lines"`
}

func (h *handlers) editItems(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req editItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: "INVALID_BODY", Message: err.Error()}})
		return
	}

	ord, err := h.deps.Cart.ApplyEdit(c.Request.Context(), id, buyerKey(c), toDomainLines(req.Lines))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

func (h *handlers) markReviewing(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	ord, err := h.deps.Orders.MarkReviewing(c.Request.Context(), id, buyerKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

func (h *handlers) confirmOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	rec, err := h.deps.Orders.Confirm(c.Request.Context(), id, buyerKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) cancelOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	if err := h.deps.Orders.Cancel(c.Request.Context(), id, buyerKey(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.StatusCancelled})
}

type updateDepositorRequest struct {
	DepositorName string `json:"depositorName" binding:"required"`
}

func (h *handlers) updateDepositor(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req updateDepositorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: "INVALID_BODY", Message: err.Error()}})
		return
	}
	if err := h.deps.Orders.UpdateDepositorName(c.Request.Context(), id, buyerKey(c), req.DepositorName); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"depositorName": req.DepositorName})
}

func (h *handlers) getReceipt(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	rec, err := h.deps.Orders.Receipt(c.Request.Context(), id, buyerKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errorBody{Code: "NOT_CONFIRMED", Message: "order has no confirmation yet"}})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) listDeadlines(c *gin.Context) {
	windows := h.deps.Deadlines.Windows(c.Request.Context(), h.deps.Clock.Now())
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}
