package httpserver

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"tshirt-orders/internal/clock"
	"tshirt-orders/internal/metrics"
	cartsvc "tshirt-orders/internal/service/cart"
	deadlinesvc "tshirt-orders/internal/service/deadline"
	ordersvc "tshirt-orders/internal/service/order"
	redemptionsvc "tshirt-orders/internal/service/redemption"
)

// Deps carries the services the router exposes.
type Deps struct {
	Orders      *ordersvc.Service
	Cart        *cartsvc.Service
	Redemption  *redemptionsvc.Service
	Deadlines   *deadlinesvc.Service
	Clock       clock.Clock
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = deps.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Buyer-Key")
	router.Use(cors.New(corsCfg))

	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	h := &handlers{deps: deps}

	router.GET("/deadlines", h.listDeadlines)

	orders := router.Group("/orders")
	{
		orders.POST("", h.submitOrder)
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.PUT("/:id/items", h.editItems)
		orders.POST("/:id/reviewing", h.markReviewing)
		orders.POST("/:id/confirm", h.confirmOrder)
		orders.POST("/:id/cancel", h.cancelOrder)
		orders.PATCH("/:id/depositor", h.updateDepositor)
		orders.GET("/:id/receipt", h.getReceipt)
		orders.GET("/:id/code", h.getRedemptionCode)
	}

	admin := router.Group("/admin")
	{
		admin.GET("/orders", h.searchOrders)
		admin.POST("/orders/:id/reviewing", h.adminMarkReviewing)
		admin.POST("/orders/:id/paid", h.adminMarkPaid)
		admin.GET("/confirmations", h.listConfirmations)
		admin.GET("/stats/status", h.statusStats)
		admin.GET("/stats/variants", h.variantStats)
		admin.POST("/redemptions/verify", h.verifyRedemption)
	}

	return router
}

type handlers struct {
	deps Deps
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: "INVALID_ORDER_ID", Message: "order id must be a positive integer"}})
		return 0, false
	}
	return id, true
}

func buyerKey(c *gin.Context) string {
	return c.GetHeader("X-Buyer-Key")
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}
